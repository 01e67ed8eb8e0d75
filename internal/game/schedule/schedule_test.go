package schedule

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandSizes(t *testing.T) {
	t.Parallel()

	for seats := 3; seats <= 6; seats++ {
		t.Run(fmt.Sprintf("%d seats", seats), func(t *testing.T) {
			t.Parallel()

			sizes := HandSizes(seats)
			assert.Len(t, sizes, 3*seats+12)

			want := make([]int, 0, 3*seats+12)
			for range seats {
				want = append(want, 1)
			}
			want = append(want, 2, 3, 4, 5, 6, 7)
			for range seats {
				want = append(want, 8)
			}
			want = append(want, 7, 6, 5, 4, 3, 2)
			for range seats {
				want = append(want, 1)
			}
			assert.Equal(t, want, sizes)
		})
	}
}

package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bid       int
		handSize  int
		othersSum int
		isDealer  bool
		wantErr   error
	}{
		{name: "in range", bid: 2, handSize: 5, othersSum: 0, wantErr: nil},
		{name: "zero is legal", bid: 0, handSize: 5, othersSum: 0, wantErr: nil},
		{name: "full hand is legal", bid: 5, handSize: 5, othersSum: 0, wantErr: nil},
		{name: "negative", bid: -1, handSize: 5, wantErr: ErrBidOutOfRange},
		{name: "above hand size", bid: 6, handSize: 5, wantErr: ErrBidOutOfRange},
		{name: "dealer hooked", bid: 2, handSize: 5, othersSum: 3, isDealer: true, wantErr: ErrBidHooked},
		{name: "dealer one above hook", bid: 3, handSize: 5, othersSum: 3, isDealer: true, wantErr: nil},
		{name: "dealer one below hook", bid: 1, handSize: 5, othersSum: 3, isDealer: true, wantErr: nil},
		{name: "non-dealer may complete the sum", bid: 2, handSize: 5, othersSum: 3, isDealer: false, wantErr: nil},
		{name: "dealer hook already impossible", bid: 0, handSize: 5, othersSum: 7, isDealer: true, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateBid(tt.bid, tt.handSize, tt.othersSum, tt.isDealer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// The dealer is rejected exactly when the bid equals handSize minus the
// sum of the other seats' bids, for every possible combination.
func TestDealerHookExhaustive(t *testing.T) {
	t.Parallel()

	handSize := 3
	for othersSum := 0; othersSum <= 2*handSize; othersSum++ {
		for bid := 0; bid <= handSize; bid++ {
			err := ValidateBid(bid, handSize, othersSum, true)
			if bid == handSize-othersSum {
				assert.ErrorIs(t, err, ErrBidHooked, "bid=%d othersSum=%d", bid, othersSum)
			} else {
				assert.NoError(t, err, "bid=%d othersSum=%d", bid, othersSum)
			}
		}
	}
}

// Scenario from a 1-card hand with 3 players: if the other two seats
// bid 0, the dealer may not bid 1.
func TestDealerHookOneCardHand(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidateBid(1, 1, 0, true), ErrBidHooked)
	assert.NoError(t, ValidateBid(0, 1, 0, true))
	assert.ErrorIs(t, ValidateBid(0, 1, 1, true), ErrBidHooked)
	assert.NoError(t, ValidateBid(1, 1, 1, true))
}

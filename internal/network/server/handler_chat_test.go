package server

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateChat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "大家好", truncateChat("大家好"), "短消息原样保留")

	long := strings.Repeat("a", maxChatLength+20)
	assert.Len(t, truncateChat(long), maxChatLength)

	// 多字节字符跨越截断点时按字符截，不能切出半个字符
	wide := strings.Repeat("牌", maxChatLength+1)
	got := truncateChat(wide)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxChatLength, utf8.RuneCountInString(got))
}

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnRateLimiter_Allow(t *testing.T) {
	t.Parallel()
	// 5 连接/秒, 10 连接/分, 封禁 1 秒
	rl := NewConnRateLimiter(5, 10, time.Second)
	ip := "127.0.0.1"

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(ip), "第 %d 个连接应当放行", i+1)
	}

	assert.False(t, rl.Allow(ip), "超过秒级限制应当拒绝")
	assert.True(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow("10.0.0.1"), "其他 IP 不受影响")
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()
	ml := NewMessageRateLimiter(5)
	clientID := "client1"

	for i := 0; i < 5; i++ {
		allowed, warning := ml.AllowMessage(clientID)
		assert.True(t, allowed)
		// 超过阈值（max/2）后开始预警
		if i >= 3 {
			assert.True(t, warning, "第 %d 条应当带预警", i+1)
		}
	}

	allowed, warning := ml.AllowMessage(clientID)
	assert.False(t, allowed)
	assert.True(t, warning)
	assert.Equal(t, 1, ml.WarningCount(clientID))

	ml.RemoveClient(clientID)
	assert.Equal(t, 0, ml.WarningCount(clientID))
}

func TestChatRateLimiter_Cooldown(t *testing.T) {
	t.Parallel()
	cl := NewChatRateLimiter(2, 50*time.Millisecond)
	playerID := "p1"

	assert.True(t, cl.AllowChat(playerID))
	assert.True(t, cl.AllowChat(playerID))
	assert.False(t, cl.AllowChat(playerID), "超速进入冷却")
	assert.False(t, cl.AllowChat(playerID), "冷却期内一律拒绝")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, cl.AllowChat(playerID), "冷却结束后恢复")
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.168.1.5:3000", want: "192.168.1.5"},
		{
			name:    "x-forwarded-for takes the first hop",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			remote:  "10.0.0.1:3000",
			want:    "203.0.113.9",
		},
		{
			name:    "x-real-ip",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			remote:  "10.0.0.1:3000",
			want:    "198.51.100.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}

package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionManager_CRUD(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager()

	session := sm.CreateSession("p1", "ana")
	assert.NotNil(t, session)
	assert.Equal(t, "p1", session.PlayerID)
	assert.Equal(t, "ana", session.PlayerName)
	assert.NotEmpty(t, session.ReconnectToken)
	assert.True(t, session.IsOnline)

	assert.Equal(t, session, sm.GetSession("p1"))
	assert.Equal(t, session, sm.GetSessionByToken(session.ReconnectToken))

	sm.DeleteSession("p1")
	assert.Nil(t, sm.GetSession("p1"))
	assert.Nil(t, sm.GetSessionByToken(session.ReconnectToken))
}

func TestSessionManager_OnlineStatus(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager()
	sm.CreateSession("p1", "ana")

	sm.SetOffline("p1")
	s := sm.GetSession("p1")
	assert.False(t, s.IsOnline)
	assert.False(t, s.DisconnectedAt.IsZero())
	assert.False(t, sm.IsOnline("p1"))

	sm.SetOnline("p1")
	s = sm.GetSession("p1")
	assert.True(t, s.IsOnline)
	assert.True(t, s.DisconnectedAt.IsZero())
}

func TestSessionManager_RoomBinding(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager()
	sm.CreateSession("p1", "ana")

	sm.SetRoom("p1", "AB12")
	assert.Equal(t, "AB12", sm.GetRoomCode("p1"))

	sm.SetRoom("p1", "")
	assert.Empty(t, sm.GetRoomCode("p1"))
	assert.Empty(t, sm.GetRoomCode("necunoscut"))
}

func TestSessionManager_CanReconnect(t *testing.T) {
	t.Parallel()
	sm := NewSessionManager()
	session := sm.CreateSession("p1", "ana")
	token := session.ReconnectToken

	assert.True(t, sm.CanReconnect(token, "p1"))

	sm.SetOffline("p1")
	assert.True(t, sm.CanReconnect(token, "p1"), "时限内可以重连")

	assert.False(t, sm.CanReconnect("wrong-token", "p1"))
	assert.False(t, sm.CanReconnect(token, "p2"))

	// 把断线时间拨到时限之外
	session.DisconnectedAt = time.Now().Add(-3 * time.Minute)
	assert.False(t, sm.CanReconnect(token, "p1"))
}

func TestGenerateNickname(t *testing.T) {
	t.Parallel()
	for i := 0; i < 10; i++ {
		assert.NotEmpty(t, GenerateNickname())
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := generateToken()
		assert.Len(t, tok, 64)
		assert.False(t, seen[tok], "令牌不应重复")
		seen[tok] = true
	}
}

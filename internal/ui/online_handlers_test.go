package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

func TestHandleMsgRoomCreated(t *testing.T) {
	model := NewOnlineModel("ws://localhost:1780")
	player := protocol.PlayerInfo{ID: "p1", Name: "ana", IsHost: true}
	msg := protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: "AB23",
		Player:   player,
	})

	model.handleServerMessage(msg)

	assert.Equal(t, "AB23", model.game.roomCode)
	assert.Equal(t, "p1", model.game.hostID)
	assert.Equal(t, PhaseWaiting, model.phase)
	assert.Len(t, model.game.players, 1)
	assert.Equal(t, "p1", model.game.players[0].ID)
}

func TestHandleMsgRoomUpdate(t *testing.T) {
	model := NewOnlineModel("ws://localhost:1780")
	msg := protocol.MustNewMessage(protocol.MsgRoomUpdate, protocol.RoomSnapshot{
		RoomCode: "AB23",
		HostID:   "p1",
		Players: []protocol.PlayerInfo{
			{ID: "p1", Name: "ana", IsHost: true},
			{ID: "bot-1", Name: "机器人", IsBot: true},
		},
	})

	model.handleServerMessage(msg)

	assert.Equal(t, "p1", model.game.hostID)
	assert.Len(t, model.game.players, 2)
	assert.True(t, model.game.players[1].IsBot)
}

func TestHandleMsgGameState(t *testing.T) {
	model := NewOnlineModel("ws://localhost:1780")
	model.playerID = "p1"

	bid := 2
	msg := protocol.MustNewMessage(protocol.MsgGameState, protocol.GameStateDTO{
		Phase: "bidding",
		Seats: []protocol.SeatState{
			{Seat: 0, ID: "p1", Name: "ana", Bid: &bid},
			{Seat: 1, ID: "p2", Name: "radu"},
		},
		Turn:      1,
		HandIndex: 1,
		HandCount: 10,
		HandSize:  1,
		Hands: map[int][]protocol.CardInfo{
			0: {{Token: "AS"}},
			1: {{Hidden: true}},
		},
	})

	model.handleServerMessage(msg)

	assert.Equal(t, PhaseTable, model.phase, "叫牌阶段应进入牌桌界面")
	assert.Equal(t, 1, model.game.state.Turn)
	assert.Equal(t, 0, model.game.mySeat("p1"))
	assert.False(t, model.game.isMyTurn("p1"))
	assert.True(t, model.game.isMyTurn("p2"))
}

func TestHandleMsgMatchOver(t *testing.T) {
	model := NewOnlineModel("ws://localhost:1780")
	msg := protocol.MustNewMessage(protocol.MsgMatchOver, protocol.MatchOverPayload{
		Ranking: []protocol.LeaderboardRow{
			{Seat: 1, Name: "radu", Score: 42},
			{Seat: 0, Name: "ana", Score: 17},
		},
	})

	model.handleServerMessage(msg)

	assert.Equal(t, PhaseMatchOver, model.phase)
	assert.Len(t, model.game.ranking, 2)
	assert.Equal(t, "radu", model.game.ranking[0].Name)
}

func TestHandleMsgChatRelay(t *testing.T) {
	model := NewOnlineModel("ws://localhost:1780")
	msg := protocol.MustNewMessage(protocol.MsgChatRelay, protocol.ChatRelayPayload{
		PlayerID:   "p2",
		PlayerName: "radu",
		Text:       "salut",
	})

	model.handleServerMessage(msg)

	assert.Len(t, model.game.chatHistory, 1)
	assert.Contains(t, model.game.chatHistory[0], "salut")
}

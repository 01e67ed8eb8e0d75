package types

import (
	"context"
	"time"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// RoomState 房间状态
type RoomState int

const (
	RoomStateWaiting RoomState = iota // 等待开赛
	RoomStateInMatch                  // 比赛进行中
	RoomStateEnded                    // 比赛已结束
)

// GameError 游戏错误（房间和会话共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// ClientInterface 连接抽象，便于测试中替换真实 WebSocket 客户端
type ClientInterface interface {
	GetID() string
	GetName() string
	GetRoom() string
	SetRoom(roomCode string)
	SendMessage(msg *protocol.Message)
	Close()
}

// GameConfigInterface 比赛节奏配置
type GameConfigInterface interface {
	TrickPauseDuration() time.Duration
	HandEndDuration() time.Duration
	BotThinkDuration() time.Duration
	ReconnectGraceDuration() time.Duration
}

// LeaderboardInterface 跨场次排行榜
type LeaderboardInterface interface {
	RecordMatchResult(ctx context.Context, playerName string, score int, winner bool) error
}

// ServerContext 会话与房间依赖的服务端能力
type ServerContext interface {
	GetLeaderboard() LeaderboardInterface
	GetGameConfig() GameConfigInterface
}

// RoomInterface 会话反向依赖的房间能力
type RoomInterface interface {
	GetCode() string
	Broadcast(msg *protocol.Message)
	BroadcastGameState()
	SetState(state RoomState)
	GetServer() ServerContext
}

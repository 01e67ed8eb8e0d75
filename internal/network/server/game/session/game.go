package session

import (
	"sync"
	"time"

	"github.com/mpopesco/whist-go/internal/game/card"
	"github.com/mpopesco/whist-go/internal/game/rule"
	"github.com/mpopesco/whist-go/internal/game/schedule"
	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// Phase 比赛阶段
type Phase int

const (
	PhaseWaiting    Phase = iota // 尚未开赛
	PhaseChooseTrump             // 首家亮主（8 张局）
	PhaseBidding                 // 叫墩
	PhasePlaying                 // 出牌
	PhaseTrickPause              // 一墩打完后的展示停顿
	PhaseHandEnd                 // 一局结束的结算停顿
	PhaseGameEnd                 // 整场结束
)

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseChooseTrump:
		return "choose_trump"
	case PhaseBidding:
		return "bidding"
	case PhasePlaying:
		return "playing"
	case PhaseTrickPause:
		return "trick_pause"
	case PhaseHandEnd:
		return "hand_end"
	case PhaseGameEnd:
		return "game_end"
	default:
		return "unknown"
	}
}

var (
	ErrMatchNotStarted = &types.GameError{Code: protocol.ErrCodeMatchNotStarted, Message: "比赛尚未开始"}
	ErrNotYourTurn     = &types.GameError{Code: protocol.ErrCodeNotYourTurn, Message: "还没轮到你行动"}
	ErrWrongPhase      = &types.GameError{Code: protocol.ErrCodeWrongPhase, Message: "当前阶段不允许该操作"}
	ErrInvalidBid      = &types.GameError{Code: protocol.ErrCodeInvalidBid, Message: "叫墩数超出范围"}
	ErrBidHooked       = &types.GameError{Code: protocol.ErrCodeBidHooked, Message: "庄家不能让叫墩总和等于牌数"}
	ErrInvalidCard     = &types.GameError{Code: protocol.ErrCodeInvalidCard, Message: "无效的牌"}
	ErrIllegalPlay     = &types.GameError{Code: protocol.ErrCodeIllegalPlay, Message: "违反跟牌规则"}
	ErrInvalidSuit     = &types.GameError{Code: protocol.ErrCodeInvalidSuit, Message: "无效的花色"}
	ErrInvalidSeats    = &types.GameError{Code: protocol.ErrCodeInvalidSeatCount, Message: "座位数必须在 3 到 6 之间"}
)

// Seat 一个座位的全部比赛内状态。会话内部一律以座位下标寻址，
// 重连换人时只需改写 ID 和昵称。
type Seat struct {
	ID      string
	Name    string
	IsBot   bool
	Offline bool

	Hand   []card.Card
	Bid    *int
	Tricks int
	Score  int
	Streak rule.Streak
}

// PlayerData 开赛时的座位名单
type PlayerData struct {
	ID    string
	Name  string
	IsBot bool
}

// GameSession 一场比赛的状态机，挂在房间之下
type GameSession struct {
	room types.RoomInterface

	phase    Phase
	seats    []*Seat
	handPlan []int // 各局牌数表
	handIdx  int
	dealer   int

	trump      *card.Suit
	stock      []card.Card // 发剩的牌，定主取其首张
	turn       int         // 当前行动座位，-1 表示无人
	trick      []rule.Play
	leadSuit   *card.Suit
	lastWinner int // trick_pause 期间记住的赢家座位

	// 自动推进定时器。持 timerMu 调度，回调里重新拿 mu 校验阶段。
	pauseTimer   *time.Timer
	handEndTimer *time.Timer
	botTimer     *time.Timer
	graceTimer   *time.Timer
	graceActive  bool
	timerMu      sync.Mutex

	mu sync.RWMutex
}

// NewGameSession 按名单建立会话，座位顺序即出牌顺序
func NewGameSession(room types.RoomInterface, players []PlayerData) (*GameSession, error) {
	if len(players) < 3 || len(players) > 6 {
		return nil, ErrInvalidSeats
	}

	seats := make([]*Seat, len(players))
	for i, p := range players {
		seats[i] = &Seat{ID: p.ID, Name: p.Name, IsBot: p.IsBot}
	}

	return &GameSession{
		room:     room,
		phase:    PhaseWaiting,
		seats:    seats,
		handPlan: schedule.HandSizes(len(players)),
		turn:     -1,
	}, nil
}

// Start 发第一局。只在 waiting 阶段有效。
func (gs *GameSession) Start() error {
	gs.mu.Lock()
	if gs.phase != PhaseWaiting {
		gs.mu.Unlock()
		return ErrWrongPhase
	}
	gs.handIdx = 0
	gs.dealer = 0
	gs.startHand()
	gs.mu.Unlock()

	gs.room.BroadcastGameState()
	gs.scheduleBotCheck()
	return nil
}

// Phase 当前阶段
func (gs *GameSession) Phase() Phase {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.phase
}

// Turn 当前行动座位
func (gs *GameSession) Turn() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.turn
}

// SeatCount 座位数
func (gs *GameSession) SeatCount() int {
	return len(gs.seats)
}

// seatByID 座位下标，找不到返回 -1。调用方持锁。
func (gs *GameSession) seatByID(playerID string) int {
	for i, s := range gs.seats {
		if s.ID == playerID {
			return i
		}
	}
	return -1
}

// SeatOf 对外的座位查询
func (gs *GameSession) SeatOf(playerID string) int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.seatByID(playerID)
}

// RekeySeat 重连换绑：把座位上的旧身份替换为新连接的身份。
// 会话状态全部按座位下标存放，这里只动 ID 和昵称。
func (gs *GameSession) RekeySeat(oldID, newID, newName string) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	idx := gs.seatByID(oldID)
	if idx < 0 {
		return false
	}
	gs.seats[idx].ID = newID
	if newName != "" {
		gs.seats[idx].Name = newName
	}
	return true
}

// Stop 取消全部定时器，房间解散时调用
func (gs *GameSession) Stop() {
	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()
	for _, t := range []*time.Timer{gs.pauseTimer, gs.handEndTimer, gs.botTimer, gs.graceTimer} {
		if t != nil {
			t.Stop()
		}
	}
	gs.pauseTimer, gs.handEndTimer, gs.botTimer, gs.graceTimer = nil, nil, nil, nil
}

func (gs *GameSession) gameConfig() types.GameConfigInterface {
	return gs.room.GetServer().GetGameConfig()
}

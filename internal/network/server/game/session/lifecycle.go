package session

import (
	"context"
	"sort"
	"time"

	"github.com/mpopesco/whist-go/internal/game/card"
	"github.com/mpopesco/whist-go/internal/game/rule"
	"github.com/mpopesco/whist-go/internal/logger"
	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// startHand 开一局：洗牌、从庄家下家起轮发、定主。调用方持写锁。
func (gs *GameSession) startHand() {
	n := len(gs.seats)
	handSize := gs.handPlan[gs.handIdx]

	deck, _ := card.NewDeck(n) // 座位数在构造时已校验
	deck.Shuffle()

	for _, s := range gs.seats {
		s.Hand = nil
		s.Bid = nil
		s.Tricks = 0
	}
	for r := 0; r < handSize; r++ {
		for off := 1; off <= n; off++ {
			seat := (gs.dealer + off) % n
			gs.seats[seat].Hand = append(gs.seats[seat].Hand, deck[0])
			deck = deck[1:]
		}
	}
	gs.stock = deck
	for _, s := range gs.seats {
		card.SortHand(s.Hand)
	}

	gs.trick = nil
	gs.leadSuit = nil
	gs.turn = (gs.dealer + 1) % n

	if len(gs.stock) == 0 {
		// 牌发光的满手局：首家先亮主，此时他只能看到前五张
		gs.trump = nil
		gs.phase = PhaseChooseTrump
	} else {
		suit := gs.stock[0].Suit
		gs.trump = &suit
		gs.phase = PhaseBidding
	}

	logger.LogInfo("房间 %s 第 %d/%d 局开始，每人 %d 张，庄家座位 %d",
		gs.room.GetCode(), gs.handIdx+1, len(gs.handPlan), handSize, gs.dealer)
}

// scoreHand 一局打完：结算得分与连胜，推进到 hand_end 或 game_end。
// 调用方持写锁，返回是否整场结束。
func (gs *GameSession) scoreHand() bool {
	for _, s := range gs.seats {
		bid := 0
		if s.Bid != nil {
			bid = *s.Bid
		}
		delta := rule.HandScore(bid, s.Tricks)
		bonus := s.Streak.Advance(bid == s.Tricks)
		s.Score += delta + bonus
	}

	gs.turn = -1
	if gs.handIdx == len(gs.handPlan)-1 {
		gs.phase = PhaseGameEnd
		return true
	}
	gs.phase = PhaseHandEnd
	return false
}

// AdvanceHand 从 hand_end 进入下一局。定时器和玩家的 next_hand
// 请求都会走到这里，阶段不符时静默返回，因此天然幂等。
func (gs *GameSession) AdvanceHand() {
	gs.mu.Lock()
	if gs.phase != PhaseHandEnd {
		gs.mu.Unlock()
		return
	}
	gs.cancelHandEndTimer()
	gs.handIdx++
	gs.dealer = (gs.dealer + 1) % len(gs.seats)
	gs.startHand()
	gs.mu.Unlock()

	gs.room.BroadcastGameState()
	gs.scheduleBotCheck()
}

// finishMatch 整场结束：广播终局名次并写入排行榜。不持锁调用。
func (gs *GameSession) finishMatch() {
	gs.mu.RLock()
	ranking := gs.rankingLocked()
	gs.mu.RUnlock()

	gs.room.SetState(types.RoomStateEnded)
	gs.room.BroadcastGameState()

	payload := &protocol.MatchOverPayload{Ranking: ranking}
	if msg, err := protocol.NewMessage(protocol.MsgMatchOver, payload); err == nil {
		gs.room.Broadcast(msg)
	}

	lb := gs.room.GetServer().GetLeaderboard()
	if lb == nil {
		return
	}
	topScore := ranking[0].Score
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	for _, s := range gs.seats {
		if s.IsBot {
			continue
		}
		if err := lb.RecordMatchResult(ctx, s.Name, s.Score, s.Score == topScore); err != nil {
			logger.LogError("排行榜写入失败 %s: %v", s.Name, err)
		}
	}
}

// rankingLocked 按总分降序的终局名次。调用方持锁。
func (gs *GameSession) rankingLocked() []protocol.LeaderboardRow {
	rows := make([]protocol.LeaderboardRow, 0, len(gs.seats))
	for i, s := range gs.seats {
		rows = append(rows, protocol.LeaderboardRow{Seat: i, Name: s.Name, Score: s.Score})
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Score > rows[b].Score })
	return rows
}

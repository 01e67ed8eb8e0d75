package session

import (
	"github.com/mpopesco/whist-go/internal/game/card"
	"github.com/mpopesco/whist-go/internal/game/rule"
	"github.com/mpopesco/whist-go/internal/logger"
)

// HandlePlayCard 出一张牌。打满一圈结算本墩，打空手牌结算本局。
func (gs *GameSession) HandlePlayCard(playerID, token string) error {
	gs.mu.Lock()
	if gs.phase != PhasePlaying {
		gs.mu.Unlock()
		if gs.noMatchRunning() {
			return ErrMatchNotStarted
		}
		return ErrWrongPhase
	}
	idx := gs.seatByID(playerID)
	if idx < 0 || idx != gs.turn {
		gs.mu.Unlock()
		return ErrNotYourTurn
	}

	c, err := card.ParseToken(token)
	if err != nil {
		gs.mu.Unlock()
		return ErrInvalidCard
	}
	seat := gs.seats[idx]
	if card.IndexOf(seat.Hand, c) < 0 {
		gs.mu.Unlock()
		return ErrInvalidCard
	}
	if !rule.IsLegalPlay(seat.Hand, c, gs.leadSuit, *gs.trump) {
		gs.mu.Unlock()
		return ErrIllegalPlay
	}

	seat.Hand = card.Remove(seat.Hand, c)
	gs.trick = append(gs.trick, rule.Play{Seat: idx, Card: c})
	if gs.leadSuit == nil {
		lead := c.Suit
		gs.leadSuit = &lead
	}

	n := len(gs.seats)
	matchOver := false
	var after func()

	if len(gs.trick) == n {
		winner := rule.TrickWinner(gs.trick, *gs.leadSuit, *gs.trump)
		gs.seats[winner].Tricks++
		gs.lastWinner = winner
		gs.turn = -1
		logger.LogInfo("房间 %s 座位 %d 收下一墩", gs.room.GetCode(), winner)

		if len(gs.seats[winner].Hand) == 0 {
			matchOver = gs.scoreHand()
			if !matchOver {
				after = gs.scheduleHandEndTimer
			}
		} else {
			gs.phase = PhaseTrickPause
			after = gs.schedulePauseTimer
		}
	} else {
		gs.turn = (gs.turn + 1) % n
	}
	gs.mu.Unlock()

	if matchOver {
		gs.finishMatch()
		return nil
	}
	gs.room.BroadcastGameState()
	if after != nil {
		after()
	}
	gs.scheduleBotCheck()
	return nil
}

// AdvanceTrick 结束展示停顿：清台，赢家先出。定时器和提前到齐的
// 客户端确认都可能触发，阶段不符时静默返回。
func (gs *GameSession) AdvanceTrick() {
	gs.mu.Lock()
	if gs.phase != PhaseTrickPause {
		gs.mu.Unlock()
		return
	}
	gs.cancelPauseTimer()
	gs.trick = nil
	gs.leadSuit = nil
	gs.turn = gs.lastWinner
	gs.phase = PhasePlaying
	gs.mu.Unlock()

	gs.room.BroadcastGameState()
	gs.scheduleBotCheck()
}

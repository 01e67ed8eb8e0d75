package session

import (
	"errors"

	"github.com/mpopesco/whist-go/internal/game/card"
	"github.com/mpopesco/whist-go/internal/game/rule"
	"github.com/mpopesco/whist-go/internal/logger"
)

// HandleChooseTrump 满手局首家亮主。亮主后进入叫墩，仍由首家先叫。
func (gs *GameSession) HandleChooseTrump(playerID, suitLetter string) error {
	gs.mu.Lock()
	if gs.phase != PhaseChooseTrump {
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
	suit, err := card.SuitFromLetter(suitLetter)
	if err != nil {
		gs.mu.Unlock()
		return ErrInvalidSuit
	}

	gs.trump = &suit
	gs.phase = PhaseBidding
	logger.LogInfo("房间 %s 座位 %d 定主 %s", gs.room.GetCode(), idx, suit.Letter())
	gs.mu.Unlock()

	gs.room.BroadcastGameState()
	gs.scheduleBotCheck()
	return nil
}

// HandleBid 叫墩。从庄家下家起按座位顺序轮叫，庄家最后叫，
// 受不许补齐的限制；全员叫完进入出牌。
func (gs *GameSession) HandleBid(playerID string, bid int) error {
	gs.mu.Lock()
	if gs.phase != PhaseBidding {
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

	handSize := gs.handPlan[gs.handIdx]
	others := 0
	for i, s := range gs.seats {
		if i != idx && s.Bid != nil {
			others += *s.Bid
		}
	}
	if err := rule.ValidateBid(bid, handSize, others, idx == gs.dealer); err != nil {
		gs.mu.Unlock()
		if errors.Is(err, rule.ErrBidHooked) {
			return ErrBidHooked
		}
		return ErrInvalidBid
	}

	v := bid
	gs.seats[idx].Bid = &v
	logger.LogInfo("房间 %s 座位 %d 叫 %d 墩", gs.room.GetCode(), idx, bid)

	if idx == gs.dealer {
		// 庄家收口，开打
		gs.phase = PhasePlaying
		gs.turn = (gs.dealer + 1) % len(gs.seats)
		gs.trick = nil
		gs.leadSuit = nil
	} else {
		gs.turn = (gs.turn + 1) % len(gs.seats)
	}
	gs.mu.Unlock()

	gs.room.BroadcastGameState()
	gs.scheduleBotCheck()
	return nil
}

// noMatchRunning 调用方不持锁
func (gs *GameSession) noMatchRunning() bool {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.phase == PhaseWaiting || gs.phase == PhaseGameEnd
}

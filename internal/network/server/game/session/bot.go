package session

import (
	"time"

	"github.com/mpopesco/whist-go/internal/game/card"
	"github.com/mpopesco/whist-go/internal/game/rule"
	"github.com/mpopesco/whist-go/internal/logger"
)

// scheduleBotCheck 若当前轮到托管座位行动，延迟一个"思考"间隔后代打。
// 每次状态变化后都会被调一次，托管座位连续行动就靠这条链。
func (gs *GameSession) scheduleBotCheck() {
	gs.mu.RLock()
	needed := gs.turn >= 0 && gs.seatAutoActs(gs.turn) &&
		(gs.phase == PhaseChooseTrump || gs.phase == PhaseBidding || gs.phase == PhasePlaying)
	gs.mu.RUnlock()
	if !needed {
		return
	}

	gs.timerMu.Lock()
	defer gs.timerMu.Unlock()
	if gs.graceActive {
		return
	}
	if gs.botTimer != nil {
		gs.botTimer.Stop()
	}
	gs.botTimer = time.AfterFunc(gs.gameConfig().BotThinkDuration(), gs.botAct)
}

// seatAutoActs 托管判定：机器人座位始终代打；真人座位只在离线时
// 代打，调度层保证宽限期内不会走到这里。调用方需持 mu。
func (gs *GameSession) seatAutoActs(idx int) bool {
	s := gs.seats[idx]
	return s.IsBot || s.Offline
}

// botAct 在读锁下决策，释放后走普通入口执行，让托管座位与真人
// 遵守完全相同的校验路径。期间重连回来的座位会在这里被放过。
func (gs *GameSession) botAct() {
	gs.mu.RLock()
	if gs.turn < 0 || !gs.seatAutoActs(gs.turn) {
		gs.mu.RUnlock()
		return
	}
	idx := gs.turn
	botID := gs.seats[idx].ID
	phase := gs.phase
	hand := append([]card.Card(nil), gs.seats[idx].Hand...)

	var action func() error
	switch phase {
	case PhaseChooseTrump:
		suit := botPickTrump(hand)
		action = func() error { return gs.HandleChooseTrump(botID, suit.Letter()) }
	case PhaseBidding:
		handSize := gs.handPlan[gs.handIdx]
		others := 0
		for i, s := range gs.seats {
			if i != idx && s.Bid != nil {
				others += *s.Bid
			}
		}
		bid := botPickBid(hand, handSize, others, idx == gs.dealer)
		action = func() error { return gs.HandleBid(botID, bid) }
	case PhasePlaying:
		c := botPickCard(hand, gs.leadSuit, *gs.trump)
		action = func() error { return gs.HandlePlayCard(botID, c.Token()) }
	}
	gs.mu.RUnlock()

	if action == nil {
		return
	}
	if err := action(); err != nil {
		logger.LogError("房间 %s 机器人座位 %d 行动失败: %v", gs.room.GetCode(), idx, err)
	}
}

// botPickBid 按大牌张数估墩，撞上庄家禁叫值就近挪一格
func botPickBid(hand []card.Card, handSize, othersSum int, isDealer bool) int {
	bid := 0
	for _, c := range hand {
		if c.Rank >= card.RankJ {
			bid++
		}
	}
	if bid > handSize {
		bid = handSize
	}
	if isDealer {
		forbidden := rule.ForbiddenDealerBid(handSize, othersSum)
		if bid == forbidden {
			if bid > 0 {
				bid--
			} else {
				bid++
			}
		}
	}
	return bid
}

// botPickTrump 手里最多的花色当主
func botPickTrump(hand []card.Card) card.Suit {
	counts := map[card.Suit]int{}
	for _, c := range hand {
		counts[c.Suit]++
	}
	best := card.Spade
	bestN := -1
	for _, s := range []card.Suit{card.Spade, card.Heart, card.Diamond, card.Club} {
		if counts[s] > bestN {
			best, bestN = s, counts[s]
		}
	}
	return best
}

// botPickCard 合法牌里出最小的，能跟花色时先跟
func botPickCard(hand []card.Card, leadSuit *card.Suit, trump card.Suit) card.Card {
	legal := rule.LegalPlays(hand, leadSuit, trump)
	if leadSuit != nil {
		var follow []card.Card
		for _, c := range legal {
			if c.Suit == *leadSuit {
				follow = append(follow, c)
			}
		}
		if len(follow) > 0 {
			legal = follow
		}
	}
	best := legal[0]
	for _, c := range legal[1:] {
		if c.Rank < best.Rank {
			best = c
		}
	}
	return best
}

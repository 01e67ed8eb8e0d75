package session

import (
	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// chooseTrumpVisible 亮主阶段首家能看到的张数
const chooseTrumpVisible = 5

// BuildGameStateDTO 生成某个观看者视角的比赛快照。观看者只能
// 看到自己的手牌明面；亮主阶段的首家更进一步，只能看到前五张。
func (gs *GameSession) BuildGameStateDTO(viewerID string) *protocol.GameStateDTO {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	dto := &protocol.GameStateDTO{
		Phase:     gs.phase.String(),
		Dealer:    gs.dealer,
		HandIndex: gs.handIdx + 1,
		HandCount: len(gs.handPlan),
		HandSize:  gs.handPlan[gs.handIdx],
		Turn:      gs.turn,
		Trick:     make([]protocol.TrickPlayInfo, 0, len(gs.trick)),
		Hands:     make(map[int][]protocol.CardInfo, len(gs.seats)),
		Ranking:   gs.rankingLocked(),
	}
	if gs.trump != nil {
		dto.Trump = gs.trump.Letter()
	}

	for _, p := range gs.trick {
		dto.Trick = append(dto.Trick, protocol.TrickPlayInfo{Seat: p.Seat, Card: p.Card.Token()})
	}

	for i, s := range gs.seats {
		dto.Seats = append(dto.Seats, protocol.SeatState{
			Seat:   i,
			ID:     s.ID,
			Name:   s.Name,
			IsBot:  s.IsBot,
			Online: !s.Offline,
			Bid:    s.Bid,
			Tricks: s.Tricks,
			Score:  s.Score,
			Streak: protocol.StreakInfo{Type: s.Streak.Type.String(), Count: s.Streak.Count},
		})
		dto.Hands[i] = gs.projectHand(i, viewerID)
	}
	return dto
}

// projectHand 座位 idx 的手牌在 viewer 眼里的样子。调用方持锁。
func (gs *GameSession) projectHand(idx int, viewerID string) []protocol.CardInfo {
	seat := gs.seats[idx]
	cards := make([]protocol.CardInfo, 0, len(seat.Hand))

	if viewerID == "" || seat.ID != viewerID {
		for range seat.Hand {
			cards = append(cards, protocol.CardInfo{Hidden: true})
		}
		return cards
	}

	// 亮主阶段的首家只先摸到前五张
	limited := gs.phase == PhaseChooseTrump && idx == gs.turn
	for i, c := range seat.Hand {
		if limited && i >= chooseTrumpVisible {
			cards = append(cards, protocol.CardInfo{Hidden: true})
		} else {
			cards = append(cards, protocol.CardInfo{Token: c.Token()})
		}
	}
	return cards
}

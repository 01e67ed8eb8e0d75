package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpopesco/whist-go/internal/game/card"
	"github.com/mpopesco/whist-go/internal/game/rule"
	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// --- test doubles ---

type stubConfig struct{ pause, handEnd, think, grace time.Duration }

func (c *stubConfig) TrickPauseDuration() time.Duration     { return c.pause }
func (c *stubConfig) HandEndDuration() time.Duration        { return c.handEnd }
func (c *stubConfig) BotThinkDuration() time.Duration       { return c.think }
func (c *stubConfig) ReconnectGraceDuration() time.Duration { return c.grace }

type stubLeaderboard struct {
	mu      sync.Mutex
	records map[string]bool // name -> winner
}

func (l *stubLeaderboard) RecordMatchResult(_ context.Context, name string, _ int, winner bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.records == nil {
		l.records = make(map[string]bool)
	}
	l.records[name] = winner
	return nil
}

type stubServer struct {
	cfg *stubConfig
	lb  *stubLeaderboard
}

func (s *stubServer) GetLeaderboard() types.LeaderboardInterface {
	if s.lb == nil {
		return nil
	}
	return s.lb
}
func (s *stubServer) GetGameConfig() types.GameConfigInterface { return s.cfg }

type stubRoom struct {
	server *stubServer

	mu         sync.Mutex
	broadcasts []*protocol.Message
	stateCalls int
	state      types.RoomState
}

func (r *stubRoom) GetCode() string { return "TEST" }
func (r *stubRoom) Broadcast(msg *protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcasts = append(r.broadcasts, msg)
}
func (r *stubRoom) BroadcastGameState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateCalls++
}
func (r *stubRoom) SetState(s types.RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
}
func (r *stubRoom) GetServer() types.ServerContext { return r.server }

func (r *stubRoom) lastMessage() *protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.broadcasts) == 0 {
		return nil
	}
	return r.broadcasts[len(r.broadcasts)-1]
}

func newTestSession(t *testing.T, names []string, bots ...int) (*GameSession, *stubRoom) {
	t.Helper()
	room := &stubRoom{server: &stubServer{
		cfg: &stubConfig{pause: time.Hour, handEnd: time.Hour, think: time.Millisecond, grace: time.Hour},
		lb:  &stubLeaderboard{},
	}}
	players := make([]PlayerData, len(names))
	for i, n := range names {
		players[i] = PlayerData{ID: "id-" + n, Name: n}
	}
	for _, b := range bots {
		players[b].IsBot = true
	}
	gs, err := NewGameSession(room, players)
	require.NoError(t, err)
	t.Cleanup(gs.Stop)
	return gs, room
}

func mustCard(t *testing.T, token string) card.Card {
	t.Helper()
	c, err := card.ParseToken(token)
	require.NoError(t, err)
	return c
}

func setHand(gs *GameSession, seat int, tokens ...string) {
	hand := make([]card.Card, len(tokens))
	for i, tok := range tokens {
		c, _ := card.ParseToken(tok)
		hand[i] = c
	}
	gs.seats[seat].Hand = hand
}

// --- tests ---

func TestNewGameSessionSeatCount(t *testing.T) {
	t.Parallel()
	room := &stubRoom{server: &stubServer{cfg: &stubConfig{}}}

	for _, n := range []int{0, 1, 2, 7} {
		players := make([]PlayerData, n)
		_, err := NewGameSession(room, players)
		assert.ErrorIs(t, err, ErrInvalidSeats, "%d 个座位应当被拒绝", n)
	}
	for n := 3; n <= 6; n++ {
		players := make([]PlayerData, n)
		for i := range players {
			players[i] = PlayerData{ID: "p", Name: "p"}
		}
		_, err := NewGameSession(room, players)
		assert.NoError(t, err)
	}
}

func TestStartDealsFirstHand(t *testing.T) {
	t.Parallel()
	gs, room := newTestSession(t, []string{"ana", "bogdan", "carmen"})

	require.NoError(t, gs.Start())

	assert.Equal(t, PhaseBidding, gs.Phase(), "首局只有一张牌，跳过亮主直接叫墩")
	assert.Equal(t, 1, gs.Turn(), "庄家下家先行动")
	for i := range gs.seats {
		assert.Len(t, gs.seats[i].Hand, 1)
		assert.Nil(t, gs.seats[i].Bid)
	}
	require.NotNil(t, gs.trump, "非满手局从余牌首张定主")
	assert.Equal(t, gs.stock[0].Suit, *gs.trump)
	assert.Greater(t, room.stateCalls, 0)

	assert.ErrorIs(t, gs.Start(), ErrWrongPhase, "重复开赛应当被拒绝")
}

func TestBiddingOrderAndHook(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	// 庄家是座位 0，叫墩顺序 1 -> 2 -> 0
	assert.ErrorIs(t, gs.HandleBid("id-ana", 0), ErrNotYourTurn)
	assert.ErrorIs(t, gs.HandleBid("id-bogdan", 2), ErrInvalidBid, "超出手牌数")
	assert.ErrorIs(t, gs.HandleBid("id-bogdan", -1), ErrInvalidBid)

	require.NoError(t, gs.HandleBid("id-bogdan", 1))
	assert.Equal(t, 2, gs.Turn())
	require.NoError(t, gs.HandleBid("id-carmen", 0))

	// 前两家共叫 1 墩，单张局庄家禁叫 1-1=0
	assert.ErrorIs(t, gs.HandleBid("id-ana", 0), ErrBidHooked)
	require.NoError(t, gs.HandleBid("id-ana", 1))

	assert.Equal(t, PhasePlaying, gs.Phase())
	assert.Equal(t, 1, gs.Turn(), "庄家下家先出")
}

func TestHandlePlayCardFullTrick(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	// 摆一个确定的两张牌残局：红桃主，座位 1 先出
	trump := card.Heart
	gs.mu.Lock()
	gs.phase = PhasePlaying
	gs.trump = &trump
	gs.turn = 1
	gs.trick = nil
	gs.leadSuit = nil
	setHand(gs, 0, "AS", "9D")
	setHand(gs, 1, "KS", "QS")
	setHand(gs, 2, "10H", "9S")
	zero := 0
	for i := range gs.seats {
		gs.seats[i].Bid = &zero
	}
	gs.mu.Unlock()

	assert.ErrorIs(t, gs.HandlePlayCard("id-ana", "AS"), ErrNotYourTurn)
	require.NoError(t, gs.HandlePlayCard("id-bogdan", "KS"))
	assert.Equal(t, 2, gs.Turn())

	assert.ErrorIs(t, gs.HandlePlayCard("id-carmen", "AH"), ErrInvalidCard, "手里没有的牌")
	assert.ErrorIs(t, gs.HandlePlayCard("id-carmen", "10H"), ErrIllegalPlay, "有黑桃必须跟")
	require.NoError(t, gs.HandlePlayCard("id-carmen", "9S"))

	require.NoError(t, gs.HandlePlayCard("id-ana", "AS"))

	assert.Equal(t, PhaseTrickPause, gs.Phase(), "一圈打满进入展示停顿")
	assert.Equal(t, 1, gs.seats[0].Tricks, "黑桃 A 最大")
	assert.Equal(t, -1, gs.Turn())

	gs.AdvanceTrick()
	assert.Equal(t, PhasePlaying, gs.Phase())
	assert.Equal(t, 0, gs.Turn(), "赢家先出下一墩")
	assert.Empty(t, gs.trick)

	gs.AdvanceTrick()
	assert.Equal(t, PhasePlaying, gs.Phase(), "非停顿阶段的推进是无操作")
}

func TestTrumpBeatsLeadSuit(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	trump := card.Club
	gs.mu.Lock()
	gs.phase = PhasePlaying
	gs.trump = &trump
	gs.turn = 0
	gs.trick = nil
	gs.leadSuit = nil
	setHand(gs, 0, "AD")
	setHand(gs, 1, "2C")
	setHand(gs, 2, "KD")
	one := 1
	for i := range gs.seats {
		gs.seats[i].Bid = &one
		gs.seats[i].Hand = gs.seats[i].Hand[:1]
	}
	gs.mu.Unlock()

	require.NoError(t, gs.HandlePlayCard("id-ana", "AD"))
	require.NoError(t, gs.HandlePlayCard("id-bogdan", "2C"))
	require.NoError(t, gs.HandlePlayCard("id-carmen", "KD"))

	assert.Equal(t, 1, gs.seats[1].Tricks, "最小的主也大过方块 A")
}

func TestHandScoringAndAdvance(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	trump := card.Spade
	gs.mu.Lock()
	gs.phase = PhasePlaying
	gs.trump = &trump
	gs.turn = 1
	gs.trick = nil
	gs.leadSuit = nil
	setHand(gs, 0, "AS")
	setHand(gs, 1, "KS")
	setHand(gs, 2, "QS")
	one, zero := 1, 0
	gs.seats[0].Bid = &one  // 将叫中
	gs.seats[1].Bid = &one  // 将叫空，差 1
	gs.seats[2].Bid = &zero // 将叫中
	gs.mu.Unlock()

	require.NoError(t, gs.HandlePlayCard("id-bogdan", "KS"))
	require.NoError(t, gs.HandlePlayCard("id-carmen", "QS"))
	require.NoError(t, gs.HandlePlayCard("id-ana", "AS"))

	assert.Equal(t, PhaseHandEnd, gs.Phase())
	assert.Equal(t, 6, gs.seats[0].Score, "叫 1 中 1 得 5+1")
	assert.Equal(t, -1, gs.seats[1].Score, "叫 1 拿 0 扣 1")
	assert.Equal(t, 5, gs.seats[2].Score, "叫 0 中 0 得 5")
	assert.Equal(t, rule.StreakSuccess, gs.seats[0].Streak.Type)
	assert.Equal(t, 1, gs.seats[0].Streak.Count)

	gs.AdvanceHand()
	assert.Equal(t, PhaseBidding, gs.Phase())
	assert.Equal(t, 1, gs.dealer, "庄家轮转")
	assert.Equal(t, 2, gs.handIdx+1)
	assert.Equal(t, 2, gs.handPlan[gs.handIdx], "第二局每人两张")
	for i := range gs.seats {
		assert.Len(t, gs.seats[i].Hand, 2)
		assert.Nil(t, gs.seats[i].Bid)
		assert.Equal(t, 0, gs.seats[i].Tricks)
	}

	gs.AdvanceHand()
	assert.Equal(t, PhaseBidding, gs.Phase(), "非结算阶段的推进是无操作")
	assert.Equal(t, 2, gs.handIdx+1)
}

func TestChooseTrumpFlow(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	// 摆成满手局的亮主阶段
	gs.mu.Lock()
	gs.phase = PhaseChooseTrump
	gs.trump = nil
	gs.turn = 1
	setHand(gs, 1, "AS", "KS", "QH", "JH", "10D", "9D", "9C", "10C")
	gs.mu.Unlock()

	dto := gs.BuildGameStateDTO("id-bogdan")
	visible := 0
	for _, c := range dto.Hands[1] {
		if !c.Hidden {
			visible++
		}
	}
	assert.Equal(t, chooseTrumpVisible, visible, "亮主的首家只能看前五张")
	assert.Empty(t, dto.Trump)

	assert.ErrorIs(t, gs.HandleChooseTrump("id-ana", "S"), ErrNotYourTurn)
	assert.ErrorIs(t, gs.HandleChooseTrump("id-bogdan", "X"), ErrInvalidSuit)
	assert.ErrorIs(t, gs.HandleBid("id-bogdan", 1), ErrWrongPhase, "亮主前不能叫墩")

	require.NoError(t, gs.HandleChooseTrump("id-bogdan", "H"))
	assert.Equal(t, PhaseBidding, gs.Phase())
	assert.Equal(t, 1, gs.Turn(), "亮主后仍由首家先叫")

	dto = gs.BuildGameStateDTO("id-bogdan")
	assert.Equal(t, "H", dto.Trump)
	for _, c := range dto.Hands[1] {
		assert.False(t, c.Hidden, "进入叫墩后整手牌可见")
	}
}

func TestBuildGameStateDTOPrivacy(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	dto := gs.BuildGameStateDTO("id-ana")
	require.Len(t, dto.Hands, 3)
	for _, c := range dto.Hands[0] {
		assert.False(t, c.Hidden)
		assert.NotEmpty(t, c.Token)
	}
	for seat, cards := range dto.Hands {
		if seat == 0 {
			continue
		}
		assert.Len(t, cards, 1, "占位数量与真实手牌一致")
		for _, c := range cards {
			assert.True(t, c.Hidden)
			assert.Empty(t, c.Token)
		}
	}
	assert.Equal(t, 1, dto.HandIndex)
	assert.Equal(t, len(gs.handPlan), dto.HandCount)

	spectator := gs.BuildGameStateDTO("")
	for _, cards := range spectator.Hands {
		for _, c := range cards {
			assert.True(t, c.Hidden, "非座上观看者看不到任何明牌")
		}
	}
}

func TestMatchOverRecordsLeaderboard(t *testing.T) {
	t.Parallel()
	gs, room := newTestSession(t, []string{"ana", "bogdan", "carmen"}, 2)
	require.NoError(t, gs.Start())

	// 直接跳到最后一局的收官一墩
	trump := card.Spade
	gs.mu.Lock()
	gs.handIdx = len(gs.handPlan) - 1
	gs.phase = PhasePlaying
	gs.trump = &trump
	gs.turn = 1
	gs.trick = nil
	gs.leadSuit = nil
	setHand(gs, 0, "AS")
	setHand(gs, 1, "KS")
	setHand(gs, 2, "QS")
	one, zero := 1, 0
	gs.seats[0].Bid = &one
	gs.seats[1].Bid = &zero
	gs.seats[2].Bid = &zero
	gs.seats[0].Score = 40
	gs.seats[1].Score = 20
	gs.seats[2].Score = 30
	gs.mu.Unlock()

	require.NoError(t, gs.HandlePlayCard("id-bogdan", "KS"))
	require.NoError(t, gs.HandlePlayCard("id-carmen", "QS"))
	require.NoError(t, gs.HandlePlayCard("id-ana", "AS"))

	assert.Equal(t, PhaseGameEnd, gs.Phase())
	assert.Equal(t, types.RoomStateEnded, room.state)

	last := room.lastMessage()
	require.NotNil(t, last)
	assert.Equal(t, protocol.MsgMatchOver, last.Type)
	payload, err := protocol.ParsePayload[protocol.MatchOverPayload](last)
	require.NoError(t, err)
	require.Len(t, payload.Ranking, 3)
	assert.Equal(t, "ana", payload.Ranking[0].Name, "得分最高者居首")

	lb := room.server.lb
	lb.mu.Lock()
	defer lb.mu.Unlock()
	assert.True(t, lb.records["ana"])
	assert.False(t, lb.records["bogdan"])
	_, botRecorded := lb.records["carmen"]
	assert.False(t, botRecorded, "机器人不进排行榜")
}

func TestRekeySeat(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	hand := append([]card.Card(nil), gs.seats[1].Hand...)
	require.True(t, gs.RekeySeat("id-bogdan", "id-new", "bogdan2"))
	assert.False(t, gs.RekeySeat("id-bogdan", "x", "y"), "旧 ID 已失效")

	assert.Equal(t, 1, gs.SeatOf("id-new"))
	assert.Equal(t, -1, gs.SeatOf("id-bogdan"))
	assert.Equal(t, "bogdan2", gs.seats[1].Name)
	assert.Equal(t, hand, gs.seats[1].Hand, "换绑不动比赛状态")

	require.NoError(t, gs.HandleBid("id-new", 1), "新连接立即可以行动")
}

func TestReconnectGraceSuppressesTimers(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"})
	require.NoError(t, gs.Start())

	gs.mu.Lock()
	gs.phase = PhaseTrickPause
	gs.lastWinner = 2
	gs.mu.Unlock()

	gs.SeatOffline("id-bogdan")
	assert.True(t, gs.seats[1].Offline)

	gs.schedulePauseTimer()
	gs.timerMu.Lock()
	assert.Nil(t, gs.pauseTimer, "宽限期内不调度自动推进")
	assert.True(t, gs.graceActive)
	gs.timerMu.Unlock()

	gs.SeatOnline("id-bogdan")
	assert.False(t, gs.seats[1].Offline)
	gs.timerMu.Lock()
	assert.False(t, gs.graceActive, "全员在线即解除宽限")
	assert.NotNil(t, gs.pauseTimer, "解除后按当前阶段补回定时器")
	gs.timerMu.Unlock()
}

func TestOfflineSeatAutoActsAfterGrace(t *testing.T) {
	t.Parallel()
	room := &stubRoom{server: &stubServer{
		cfg: &stubConfig{pause: time.Hour, handEnd: time.Hour, think: time.Millisecond, grace: 20 * time.Millisecond},
		lb:  &stubLeaderboard{},
	}}
	players := []PlayerData{
		{ID: "id-ana", Name: "ana"},
		{ID: "id-bogdan", Name: "bogdan"},
		{ID: "id-carmen", Name: "carmen"},
	}
	gs, err := NewGameSession(room, players)
	require.NoError(t, err)
	t.Cleanup(gs.Stop)
	require.NoError(t, gs.Start())

	// 轮到座位 1 叫墩时掉线，宽限到期后不等人，托管代叫
	require.Equal(t, 1, gs.Turn())
	gs.SeatOffline("id-bogdan")

	require.Eventually(t, func() bool {
		gs.mu.RLock()
		defer gs.mu.RUnlock()
		return gs.seats[1].Bid != nil
	}, time.Second, 5*time.Millisecond, "宽限到期后离线座位应被托管代打")

	assert.Equal(t, 2, gs.Turn(), "代打后轮转到下一家")
	gs.timerMu.Lock()
	assert.False(t, gs.graceActive)
	gs.timerMu.Unlock()
}

func TestBotActsOnItsTurn(t *testing.T) {
	t.Parallel()
	gs, _ := newTestSession(t, []string{"ana", "bogdan", "carmen"}, 1)
	require.NoError(t, gs.Start())

	// 座位 1 是机器人且先叫
	require.Eventually(t, func() bool {
		gs.mu.RLock()
		defer gs.mu.RUnlock()
		return gs.seats[1].Bid != nil
	}, time.Second, 5*time.Millisecond, "机器人应当自动叫墩")
}

func TestBotPolicies(t *testing.T) {
	t.Parallel()

	t.Run("bid counts honors and dodges the hook", func(t *testing.T) {
		t.Parallel()
		hand := []card.Card{
			mustCard(t, "AS"), mustCard(t, "KH"), mustCard(t, "QD"),
			mustCard(t, "9C"), mustCard(t, "10C"),
		}
		assert.Equal(t, 3, botPickBid(hand, 5, 0, false))
		// 庄家禁叫 5-2=3，向下挪一格
		assert.Equal(t, 2, botPickBid(hand, 5, 2, true))
		// 零大牌的庄家撞上禁叫 0 时向上挪
		low := []card.Card{mustCard(t, "9S"), mustCard(t, "10D")}
		assert.Equal(t, 1, botPickBid(low, 2, 2, true))
	})

	t.Run("trump picks the longest suit", func(t *testing.T) {
		t.Parallel()
		hand := []card.Card{
			mustCard(t, "9H"), mustCard(t, "10H"), mustCard(t, "JH"),
			mustCard(t, "AS"), mustCard(t, "KD"),
		}
		assert.Equal(t, card.Heart, botPickTrump(hand))
	})

	t.Run("play follows lead with the lowest card", func(t *testing.T) {
		t.Parallel()
		lead := card.Spade
		hand := []card.Card{mustCard(t, "AS"), mustCard(t, "9S"), mustCard(t, "KH")}
		got := botPickCard(hand, &lead, card.Heart)
		assert.Equal(t, mustCard(t, "9S"), got)

		// 缺门时被迫出主，仍挑最小
		void := card.Diamond
		got = botPickCard(hand, &void, card.Heart)
		assert.Equal(t, mustCard(t, "KH"), got)
	})
}

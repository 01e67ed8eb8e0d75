package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/types"
	"github.com/mpopesco/whist-go/internal/testutil"
)

type testConfig struct{}

func (testConfig) TrickPauseDuration() time.Duration     { return time.Hour }
func (testConfig) HandEndDuration() time.Duration        { return time.Hour }
func (testConfig) BotThinkDuration() time.Duration       { return time.Millisecond }
func (testConfig) ReconnectGraceDuration() time.Duration { return 30 * time.Second }

type testServer struct{}

func (testServer) GetLeaderboard() types.LeaderboardInterface { return nil }
func (testServer) GetGameConfig() types.GameConfigInterface   { return testConfig{} }

func newTestRoom(t *testing.T) (*RoomManager, *Room, *testutil.SimpleClient) {
	t.Helper()
	m := NewRoomManager(testServer{})
	host := testutil.NewSimpleClient("host-1", "ana")
	room, err := m.CreateRoom(host, "")
	require.NoError(t, err)
	t.Cleanup(func() { room.StopSession() })
	return m, room, host
}

func TestCreateAndJoinRoom(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)

	assert.Len(t, room.GetCode(), roomCodeLength)
	assert.Equal(t, host.GetID(), room.GetHostID())
	assert.Equal(t, room.GetCode(), host.GetRoom())

	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	joined, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)
	assert.Same(t, room, joined)
	assert.Equal(t, 2, room.PlayerCount())

	_, err = m.JoinRoom(testutil.NewSimpleClient("x", "x"), "ZZZZ", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomPassword(t *testing.T) {
	t.Parallel()
	m := NewRoomManager(testServer{})
	host := testutil.NewSimpleClient("host-1", "ana")
	room, err := m.CreateRoom(host, "secret")
	require.NoError(t, err)

	_, err = m.JoinRoom(testutil.NewSimpleClient("g1", "g1"), room.GetCode(), "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = m.JoinRoom(testutil.NewSimpleClient("g1", "g1"), room.GetCode(), "secret")
	assert.NoError(t, err)
	assert.True(t, room.HasPassword())
}

func TestRoomCapacity(t *testing.T) {
	t.Parallel()
	m, room, _ := newTestRoom(t)

	for i := 1; i < MaxPlayers; i++ {
		_, err := m.JoinRoom(testutil.NewSimpleClient("g", "g"), room.GetCode(), "")
		require.NoError(t, err)
	}
	_, err := m.JoinRoom(testutil.NewSimpleClient("late", "late"), room.GetCode(), "")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestAddBotHostOnly(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)

	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	_, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)

	_, err = room.AddBot(guest.GetID(), "bot-a")
	assert.ErrorIs(t, err, ErrNotHost)

	bot, err := room.AddBot(host.GetID(), "bot-a")
	require.NoError(t, err)
	assert.True(t, bot.IsBot)
	assert.Equal(t, 3, room.PlayerCount())
}

func TestStartMatch(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)

	assert.ErrorIs(t, room.StartMatch(host.GetID()), ErrTooFewPlayers)

	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	_, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)
	_, err = room.AddBot(host.GetID(), "bot-a")
	require.NoError(t, err)

	assert.ErrorIs(t, room.StartMatch(guest.GetID()), ErrNotHost)
	require.NoError(t, room.StartMatch(host.GetID()))
	assert.Equal(t, types.RoomStateInMatch, room.GetState())
	require.NotNil(t, room.GetSession())

	assert.ErrorIs(t, room.StartMatch(host.GetID()), ErrMatchStarted)
	_, err = m.JoinRoom(testutil.NewSimpleClient("late", "late"), room.GetCode(), "")
	assert.ErrorIs(t, err, ErrMatchStarted)

	// 开赛即给每个真人发了按视角裁剪的快照
	states := host.MessagesOfType(protocol.MsgGameState)
	require.NotEmpty(t, states)
	dto, err := protocol.ParsePayload[protocol.GameStateDTO](states[len(states)-1])
	require.NoError(t, err)
	assert.Equal(t, "bidding", dto.Phase)
	for _, c := range dto.Hands[0] {
		assert.False(t, c.Hidden, "自己的手牌是明牌")
	}
	for _, c := range dto.Hands[1] {
		assert.True(t, c.Hidden, "别人的手牌是背面")
	}
}

func TestLeaveRoomHostHandover(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)
	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	_, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)

	m.LeaveRoom(room, host.GetID())
	assert.Equal(t, guest.GetID(), room.GetHostID(), "房主离开后按加入顺序移交")
	assert.Equal(t, 1, room.PlayerCount())

	m.LeaveRoom(room, guest.GetID())
	assert.Nil(t, m.GetRoom(room.GetCode()), "最后一个真人离开即解散")
}

func TestBotOnlyRoomDissolves(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)
	_, err := room.AddBot(host.GetID(), "bot-a")
	require.NoError(t, err)

	m.LeaveRoom(room, host.GetID())
	assert.Nil(t, m.GetRoom(room.GetCode()), "只剩机器人的房间没有存在意义")
}

func TestReconnectKeepsSeatState(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)
	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	_, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)
	_, err = room.AddBot(host.GetID(), "bot-a")
	require.NoError(t, err)
	require.NoError(t, room.StartMatch(host.GetID()))

	room.MarkOffline(guest.GetID())
	seat := room.FindPlayer(guest.GetID())
	require.NotNil(t, seat)
	assert.False(t, seat.Online)

	offline := host.MessagesOfType(protocol.MsgPlayerOffline)
	require.NotEmpty(t, offline)

	fresh := testutil.NewSimpleClient("guest-2", "bogdan")
	require.NoError(t, room.ReconnectPlayer(guest.GetID(), fresh))

	assert.Nil(t, room.FindPlayer(guest.GetID()), "旧身份不复存在")
	seat = room.FindPlayer(fresh.GetID())
	require.NotNil(t, seat)
	assert.True(t, seat.Online)
	assert.Equal(t, "bogdan", seat.Name)
	assert.Equal(t, 1, room.GetSession().SeatOf(fresh.GetID()), "座位没变")
	assert.Equal(t, room.GetCode(), fresh.GetRoom())
}

func TestReconnectRenamesRosterAndSession(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)
	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	_, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)
	_, err = room.AddBot(host.GetID(), "bot-a")
	require.NoError(t, err)
	require.NoError(t, room.StartMatch(host.GetID()))

	room.MarkOffline(guest.GetID())
	fresh := testutil.NewSimpleClient("guest-2", "bogdan2")
	require.NoError(t, room.ReconnectPlayer(guest.GetID(), fresh))

	// 名单和牌局快照用同一个新昵称
	seat := room.FindPlayer(fresh.GetID())
	require.NotNil(t, seat)
	assert.Equal(t, "bogdan2", seat.Name)

	dto := room.GetSession().BuildGameStateDTO(fresh.GetID())
	require.Greater(t, len(dto.Seats), 1)
	assert.Equal(t, "bogdan2", dto.Seats[1].Name)

	snap := room.Snapshot()
	require.Greater(t, len(snap.Players), 1)
	assert.Equal(t, "bogdan2", snap.Players[1].Name)
}

func TestRejoinByName(t *testing.T) {
	t.Parallel()
	m, room, _ := newTestRoom(t)
	guest := testutil.NewSimpleClient("guest-1", "bogdan")
	_, err := m.JoinRoom(guest, room.GetCode(), "")
	require.NoError(t, err)

	// 在线座位不可被顶替
	_, err = m.RejoinByName(testutil.NewSimpleClient("imp", "bogdan"), room.GetCode(), "bogdan")
	assert.ErrorIs(t, err, ErrNotInRoom)

	room.MarkOffline(guest.GetID())
	fresh := testutil.NewSimpleClient("guest-2", "bogdan")
	rejoined, err := m.RejoinByName(fresh, room.GetCode(), "bogdan")
	require.NoError(t, err)
	assert.Same(t, room, rejoined)
	require.NotNil(t, room.FindPlayer(fresh.GetID()))
}

func TestListRooms(t *testing.T) {
	t.Parallel()
	m := NewRoomManager(testServer{})

	open, err := m.CreateRoom(testutil.NewSimpleClient("a", "a"), "")
	require.NoError(t, err)
	locked, err := m.CreateRoom(testutil.NewSimpleClient("b", "b"), "pw")
	require.NoError(t, err)

	playing, err := m.CreateRoom(testutil.NewSimpleClient("c", "c"), "")
	require.NoError(t, err)
	_, err = playing.AddBot("c", "bot-a")
	require.NoError(t, err)
	_, err = playing.AddBot("c", "bot-b")
	require.NoError(t, err)
	require.NoError(t, playing.StartMatch("c"))
	t.Cleanup(playing.StopSession)

	items := m.ListRooms()
	require.Len(t, items, 2, "开赛中的房间不进列表")
	codes := map[string]protocol.RoomListItem{}
	for _, it := range items {
		codes[it.RoomCode] = it
	}
	assert.False(t, codes[open.GetCode()].HasPassword)
	assert.True(t, codes[locked.GetCode()].HasPassword)
	assert.Equal(t, MaxPlayers, items[0].MaxPlayers)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	m, room, host := newTestRoom(t)
	_, err := m.JoinRoom(testutil.NewSimpleClient("guest-1", "bogdan"), room.GetCode(), "")
	require.NoError(t, err)

	snap := room.Snapshot()
	assert.Equal(t, room.GetCode(), snap.RoomCode)
	assert.Equal(t, host.GetID(), snap.HostID)
	assert.False(t, snap.InMatch)
	require.Len(t, snap.Players, 2)
	assert.True(t, snap.Players[0].IsHost)
	assert.Equal(t, 1, snap.Players[1].Seat)
}

// 编译期确认 Room 满足会话对房间的全部要求
var _ types.RoomInterface = (*Room)(nil)

package game

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mpopesco/whist-go/internal/logger"
	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/game/session"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// MaxPlayers 一个房间最多坐几人
const MaxPlayers = 6

// MinPlayers 开赛所需的最少人数
const MinPlayers = 3

var (
	ErrRoomFull      = &types.GameError{Code: protocol.ErrCodeRoomFull, Message: "房间已满"}
	ErrMatchStarted  = &types.GameError{Code: protocol.ErrCodeMatchStarted, Message: "比赛已经开始"}
	ErrNotHost       = &types.GameError{Code: protocol.ErrCodeNotHost, Message: "只有房主能执行该操作"}
	ErrTooFewPlayers = &types.GameError{Code: protocol.ErrCodeTooFewPlayers, Message: "人数不足，无法开赛"}
	ErrNotInRoom     = &types.GameError{Code: protocol.ErrCodeNotInRoom, Message: "你不在这个房间里"}
	ErrWrongPassword = &types.GameError{Code: protocol.ErrCodeWrongPassword, Message: "房间口令错误"}
)

// Player 房间内的一个成员。开赛后座位顺序即加入顺序。
type Player struct {
	ID     string
	Name   string
	IsBot  bool
	Online bool
	Client types.ClientInterface // 机器人为 nil
}

// Room 一个对局房间：等待期维护名单，开赛后挂一个比赛会话
type Room struct {
	code     string
	password string
	server   types.ServerContext

	mu      sync.RWMutex
	hostID  string
	state   types.RoomState
	players []*Player
	session *session.GameSession
}

func NewRoom(code, password string, server types.ServerContext) *Room {
	return &Room{
		code:     code,
		password: password,
		server:   server,
		state:    types.RoomStateWaiting,
	}
}

func (r *Room) GetCode() string { return r.code }

func (r *Room) GetServer() types.ServerContext { return r.server }

func (r *Room) HasPassword() bool { return r.password != "" }

func (r *Room) CheckPassword(pw string) bool { return r.password == pw }

func (r *Room) GetState() types.RoomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Room) SetState(s types.RoomState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Room) GetHostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID
}

func (r *Room) GetSession() *session.GameSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

func (r *Room) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// AddPlayer 真人入座。第一个进来的就是房主。
func (r *Room) AddPlayer(client types.ClientInterface) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == types.RoomStateInMatch {
		return ErrMatchStarted
	}
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}

	p := &Player{ID: client.GetID(), Name: client.GetName(), Online: true, Client: client}
	r.players = append(r.players, p)
	if r.hostID == "" {
		r.hostID = p.ID
	}
	client.SetRoom(r.code)
	return nil
}

// AddBot 房主补一个机器人座位
func (r *Room) AddBot(requesterID, botName string) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requesterID != r.hostID {
		return nil, ErrNotHost
	}
	if r.state == types.RoomStateInMatch {
		return nil, ErrMatchStarted
	}
	if len(r.players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	bot := &Player{
		ID:     "bot-" + uuid.NewString()[:8],
		Name:   botName,
		IsBot:  true,
		Online: true,
	}
	r.players = append(r.players, bot)
	return bot, nil
}

// RemovePlayer 等待期把人请出名单；房主走了就按加入顺序移交。
// 返回房间是否已空（空房由管理器回收）。
func (r *Room) RemovePlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.ID != playerID {
			continue
		}
		r.players = append(r.players[:i], r.players[i+1:]...)
		if p.Client != nil {
			p.Client.SetRoom("")
		}
		break
	}

	if r.hostID == playerID {
		r.hostID = ""
		for _, p := range r.players {
			if !p.IsBot {
				r.hostID = p.ID
				break
			}
		}
	}

	humans := 0
	for _, p := range r.players {
		if !p.IsBot {
			humans++
		}
	}
	return humans == 0
}

// StartMatch 房主开赛：固化座位顺序并建立会话
func (r *Room) StartMatch(requesterID string) error {
	r.mu.Lock()
	if requesterID != r.hostID {
		r.mu.Unlock()
		return ErrNotHost
	}
	if r.state == types.RoomStateInMatch {
		r.mu.Unlock()
		return ErrMatchStarted
	}
	if len(r.players) < MinPlayers {
		r.mu.Unlock()
		return ErrTooFewPlayers
	}

	roster := make([]session.PlayerData, len(r.players))
	for i, p := range r.players {
		roster[i] = session.PlayerData{ID: p.ID, Name: p.Name, IsBot: p.IsBot}
	}
	gs, err := session.NewGameSession(r, roster)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.session = gs
	r.state = types.RoomStateInMatch
	r.mu.Unlock()

	logger.LogInfo("房间 %s 开赛，%d 人入座", r.code, len(roster))
	return gs.Start()
}

// FindPlayer 按 ID 找成员
func (r *Room) FindPlayer(playerID string) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// findOfflineByName 名字匹配的离线真人座位，令牌丢失时的重连兜底
func (r *Room) findOfflineByName(name string) *Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if !p.IsBot && !p.Online && p.Name == name {
			return p
		}
	}
	return nil
}

// MarkOffline 连接断开：座位保留，标记离线并通知会话拉起宽限
func (r *Room) MarkOffline(playerID string) {
	r.mu.Lock()
	var gone *Player
	for _, p := range r.players {
		if p.ID == playerID {
			p.Online = false
			p.Client = nil
			gone = p
			break
		}
	}
	gs := r.session
	inMatch := r.state == types.RoomStateInMatch
	grace := int(r.server.GetGameConfig().ReconnectGraceDuration().Seconds())
	r.mu.Unlock()

	if gone == nil {
		return
	}
	if inMatch && gs != nil {
		gs.SeatOffline(playerID)
	}
	if msg, err := protocol.NewMessage(protocol.MsgPlayerOffline, &protocol.PlayerOfflinePayload{
		PlayerID:   gone.ID,
		PlayerName: gone.Name,
		Timeout:    grace,
	}); err == nil {
		r.Broadcast(msg)
	}
}

// ReconnectPlayer 把离线座位换绑到新连接上。旧 ID 的座位、手牌、
// 比分原样保留；名单和牌局一起改用新连接的身份与昵称，两边的
// 快照保持一致。
func (r *Room) ReconnectPlayer(oldID string, client types.ClientInterface) error {
	r.mu.Lock()
	var seat *Player
	for _, p := range r.players {
		if p.ID == oldID {
			seat = p
			break
		}
	}
	if seat == nil {
		r.mu.Unlock()
		return ErrNotInRoom
	}
	seat.ID = client.GetID()
	seat.Name = client.GetName()
	seat.Client = client
	seat.Online = true
	gs := r.session
	r.mu.Unlock()

	client.SetRoom(r.code)
	if gs != nil {
		gs.RekeySeat(oldID, client.GetID(), client.GetName())
		gs.SeatOnline(client.GetID())
	}

	if msg, err := protocol.NewMessage(protocol.MsgPlayerOnline, &protocol.PlayerOnlinePayload{
		PlayerID:   client.GetID(),
		PlayerName: seat.Name,
	}); err == nil {
		r.Broadcast(msg)
	}
	logger.LogInfo("房间 %s 玩家 %s 重连，身份 %s -> %s", r.code, seat.Name, oldID, client.GetID())
	return nil
}

// StopSession 解散前停掉会话的定时器
func (r *Room) StopSession() {
	r.mu.RLock()
	gs := r.session
	r.mu.RUnlock()
	if gs != nil {
		gs.Stop()
	}
}

package server

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/game"
	"github.com/mpopesco/whist-go/internal/network/server/game/session"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// Handler 消息处理器
type Handler struct {
	server *Server
}

// NewHandler 创建处理器
func NewHandler(s *Server) *Handler {
	return &Handler{server: s}
}

// Handle 处理消息
func (h *Handler) Handle(client *Client, msg *protocol.Message) {
	switch msg.Type {
	// 连接操作
	case protocol.MsgPing:
		h.handlePing(client, msg)
	case protocol.MsgReconnect:
		h.handleReconnect(client, msg)

	// 房间操作
	case protocol.MsgCreateRoom:
		h.handleCreateRoom(client, msg)
	case protocol.MsgJoinRoom:
		h.handleJoinRoom(client, msg)
	case protocol.MsgLeaveRoom:
		h.handleLeaveRoom(client)
	case protocol.MsgAddBot:
		h.handleAddBot(client)
	case protocol.MsgStartMatch:
		h.handleStartMatch(client)
	case protocol.MsgGetRoomList:
		h.handleGetRoomList(client)

	// 比赛操作
	case protocol.MsgBid:
		h.handleBid(client, msg)
	case protocol.MsgChooseTrump:
		h.handleChooseTrump(client, msg)
	case protocol.MsgPlayCard:
		h.handlePlayCard(client, msg)
	case protocol.MsgNextHand:
		h.handleNextHand(client)

	// 其他
	case protocol.MsgGetLeaderboard:
		h.handleGetLeaderboard(client, msg)
	case protocol.MsgChat:
		h.handleChat(client, msg)

	default:
		log.Printf("未知消息类型: %s", msg.Type)
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
	}
}

// sendError 把游戏层错误翻译成错误消息
func sendError(client *Client, err error) {
	var gameErr *types.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(protocol.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, err.Error()))
}

// handlePing 处理心跳消息
func (h *Handler) handlePing(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.Timestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleReconnect 处理断线重连：令牌换回旧身份，座位和比赛进度原样恢复
func (h *Handler) handleReconnect(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ReconnectPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if !h.server.sessionManager.CanReconnect(payload.Token, payload.PlayerID) {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "重连令牌无效或已过期"))
		return
	}

	session := h.server.sessionManager.GetSession(payload.PlayerID)
	if session == nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "会话不存在"))
		return
	}

	h.rebindSession(client, session)
}

// rebindSession 把当前连接换回旧会话的身份，并回到原房间
func (h *Handler) rebindSession(client *Client, session *PlayerSession) {
	oldID := client.ID
	client.ID = session.PlayerID
	client.Name = session.PlayerName

	h.server.clientsMu.Lock()
	delete(h.server.clients, oldID)
	h.server.clients[client.ID] = client
	h.server.clientsMu.Unlock()

	h.server.sessionManager.DeleteSession(oldID)
	h.server.sessionManager.SetOnline(client.ID)

	reconnected := protocol.ReconnectedPayload{
		PlayerID:   client.ID,
		PlayerName: client.Name,
	}

	if session.RoomCode != "" {
		if room := h.server.roomManager.GetRoom(session.RoomCode); room != nil {
			if err := room.ReconnectPlayer(client.ID, client); err == nil {
				reconnected.RoomCode = session.RoomCode
				if gs := room.GetSession(); gs != nil {
					reconnected.GameState = gs.BuildGameStateDTO(client.ID)
				}
			}
		}
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgReconnected, reconnected))
	log.Printf("玩家 %s (%s) 重连成功", client.Name, client.ID)
}

// handleCreateRoom 处理创建房间
func (h *Handler) handleCreateRoom(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.CreateRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if payload.Name != "" {
		client.Name = payload.Name
	}

	// 如果已在房间中，先离开
	h.leaveCurrentRoom(client)

	room, err := h.server.roomManager.CreateRoom(client, payload.Password)
	if err != nil {
		sendError(client, err)
		return
	}

	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomCreated, protocol.RoomCreatedPayload{
		RoomCode: room.GetCode(),
		Player:   playerInfoOf(room, client.ID),
	}))
}

// handleJoinRoom 处理加入房间。带重连令牌的请求走重连通道，
// 否则同名的离线座位也能接着打。
func (h *Handler) handleJoinRoom(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	if payload.Name != "" {
		client.Name = payload.Name
	}

	// 带重连令牌的进房请求按身份换绑处理
	if payload.ReconnectToken != "" {
		if sess := h.server.sessionManager.GetSessionByToken(payload.ReconnectToken); sess != nil &&
			sess.RoomCode == payload.RoomCode &&
			h.server.sessionManager.CanReconnect(payload.ReconnectToken, sess.PlayerID) {
			h.rebindSession(client, sess)
			return
		}
	}

	h.leaveCurrentRoom(client)

	room, err := h.server.roomManager.JoinRoom(client, payload.RoomCode, payload.Password)
	if err != nil {
		// 满员或开赛中的房间可能有属于这个人的离线座位
		if errors.Is(err, game.ErrMatchStarted) || errors.Is(err, game.ErrRoomFull) {
			if rejoined, rErr := h.server.roomManager.RejoinByName(client, payload.RoomCode, client.Name); rErr == nil {
				h.sendRoomJoined(client, rejoined)
				rejoined.BroadcastGameState()
				return
			}
		}
		sendError(client, err)
		return
	}

	h.sendRoomJoined(client, room)

	if m, mErr := protocol.NewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: playerInfoOf(room, client.ID),
	}); mErr == nil {
		room.Broadcast(m)
	}
	room.BroadcastRoomUpdate()
}

func (h *Handler) sendRoomJoined(client *Client, room *game.Room) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomJoined, protocol.RoomJoinedPayload{
		RoomCode: room.GetCode(),
		Player:   playerInfoOf(room, client.ID),
		Players:  room.Snapshot().Players,
	}))
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client *Client) {
	h.leaveCurrentRoom(client)
}

func (h *Handler) leaveCurrentRoom(client *Client) {
	code := client.GetRoom()
	if code == "" {
		return
	}
	room := h.server.roomManager.GetRoom(code)
	client.SetRoom("")
	if room == nil {
		return
	}

	// 比赛中的座位不撤：按掉线处理，保留重连窗口
	if room.GetState() == types.RoomStateInMatch && room.FindPlayer(client.ID) != nil {
		room.MarkOffline(client.ID)
		return
	}

	name := client.Name
	h.server.roomManager.LeaveRoom(room, client.ID)
	if m, err := protocol.NewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
		PlayerID:   client.ID,
		PlayerName: name,
	}); err == nil {
		room.Broadcast(m)
	}
}

// handleAddBot 房主添加机器人
func (h *Handler) handleAddBot(client *Client) {
	room := h.server.roomManager.GetRoom(client.GetRoom())
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if _, err := room.AddBot(client.ID, GenerateNickname()); err != nil {
		sendError(client, err)
		return
	}
	room.BroadcastRoomUpdate()
}

// handleStartMatch 房主开赛
func (h *Handler) handleStartMatch(client *Client) {
	room := h.server.roomManager.GetRoom(client.GetRoom())
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	if err := room.StartMatch(client.ID); err != nil {
		sendError(client, err)
		return
	}
	if m, err := protocol.NewMessage(protocol.MsgMatchStarted, room.Snapshot()); err == nil {
		room.Broadcast(m)
	}
}

// handleGetRoomList 大厅房间列表
func (h *Handler) handleGetRoomList(client *Client) {
	client.SendMessage(protocol.MustNewMessage(protocol.MsgRoomListResult, protocol.RoomListPayload{
		Rooms: h.server.roomManager.ListRooms(),
	}))
}

// handleBid 处理叫墩
func (h *Handler) handleBid(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.BidPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	gs, ok := h.sessionFor(client)
	if !ok {
		return
	}
	if err := gs.HandleBid(client.ID, payload.Value); err != nil {
		sendError(client, err)
	}
}

// handleChooseTrump 处理亮主
func (h *Handler) handleChooseTrump(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ChooseTrumpPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	gs, ok := h.sessionFor(client)
	if !ok {
		return
	}
	if err := gs.HandleChooseTrump(client.ID, payload.Suit); err != nil {
		sendError(client, err)
	}
}

// handlePlayCard 处理出牌
func (h *Handler) handlePlayCard(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.PlayCardPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	gs, ok := h.sessionFor(client)
	if !ok {
		return
	}
	if err := gs.HandlePlayCard(client.ID, payload.Card); err != nil {
		sendError(client, err)
	}
}

// handleNextHand 座上任何人都可以把局间停顿掐短，重复请求无害
func (h *Handler) handleNextHand(client *Client) {
	gs, ok := h.sessionFor(client)
	if !ok {
		return
	}
	if gs.SeatOf(client.ID) < 0 {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}
	gs.AdvanceHand()
}

// handleGetLeaderboard 处理排行榜查询
func (h *Handler) handleGetLeaderboard(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.GetLeaderboardPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	entries, err := h.server.leaderboard.TopPlayers(ctx, payload.Limit)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeUnknown, "排行榜暂不可用"))
		return
	}
	client.SendMessage(protocol.MustNewMessage(protocol.MsgLeaderboardResult, protocol.LeaderboardPayload{
		Entries: entries,
	}))
}

// sessionFor 找到客户端所在房间的比赛会话
func (h *Handler) sessionFor(client *Client) (*session.GameSession, bool) {
	room := h.server.roomManager.GetRoom(client.GetRoom())
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return nil, false
	}
	gs := room.GetSession()
	if gs == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeMatchNotStarted))
		return nil, false
	}
	return gs, true
}

// playerInfoOf 房间快照里该玩家的条目
func playerInfoOf(room *game.Room, playerID string) protocol.PlayerInfo {
	for _, p := range room.Snapshot().Players {
		if p.ID == playerID {
			return p
		}
	}
	return protocol.PlayerInfo{ID: playerID}
}

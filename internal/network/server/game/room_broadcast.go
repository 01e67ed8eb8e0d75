package game

import (
	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// Broadcast 把同一条消息发给房间里的所有在线真人
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// BroadcastGameState 比赛快照按观看者逐个裁剪后下发：每人只看得到
// 自己的明牌，其余座位都是等量的背面占位。
func (r *Room) BroadcastGameState() {
	type viewer struct {
		id     string
		client types.ClientInterface
	}
	r.mu.RLock()
	gs := r.session
	viewers := make([]viewer, 0, len(r.players))
	for _, p := range r.players {
		if p.Client != nil {
			viewers = append(viewers, viewer{p.ID, p.Client})
		}
	}
	r.mu.RUnlock()

	if gs == nil {
		return
	}
	for _, v := range viewers {
		dto := gs.BuildGameStateDTO(v.id)
		if msg, err := protocol.NewMessage(protocol.MsgGameState, dto); err == nil {
			v.client.SendMessage(msg)
		}
	}
}

// Snapshot 房间当前状态的公开视图
func (r *Room) Snapshot() *protocol.RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := &protocol.RoomSnapshot{
		RoomCode:    r.code,
		HostID:      r.hostID,
		InMatch:     r.state == types.RoomStateInMatch,
		HasPassword: r.password != "",
	}
	if r.session != nil {
		snap.Phase = r.session.Phase().String()
	}
	for i, p := range r.players {
		snap.Players = append(snap.Players, protocol.PlayerInfo{
			ID:     p.ID,
			Name:   p.Name,
			Seat:   i,
			IsBot:  p.IsBot,
			IsHost: p.ID == r.hostID,
			Online: p.Online,
		})
	}
	return snap
}

// BroadcastRoomUpdate 名单或状态有变时推一份快照
func (r *Room) BroadcastRoomUpdate() {
	if msg, err := protocol.NewMessage(protocol.MsgRoomUpdate, r.Snapshot()); err == nil {
		r.Broadcast(msg)
	}
}

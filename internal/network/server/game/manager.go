package game

import (
	"crypto/rand"
	"sort"
	"sync"

	"github.com/mpopesco/whist-go/internal/logger"
	"github.com/mpopesco/whist-go/internal/network/protocol"
	"github.com/mpopesco/whist-go/internal/network/server/types"
)

// 房间号字符表，去掉了易混的 0/O/1/I
const roomCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const roomCodeLength = 4

var ErrRoomNotFound = &types.GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}

// RoomManager 管全部房间的生老病死
type RoomManager struct {
	server types.ServerContext

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomManager(server types.ServerContext) *RoomManager {
	return &RoomManager{
		server: server,
		rooms:  make(map[string]*Room),
	}
}

// CreateRoom 建房并让创建者入座当房主
func (m *RoomManager) CreateRoom(client types.ClientInterface, password string) (*Room, error) {
	m.mu.Lock()
	code := m.newCode()
	room := NewRoom(code, password, m.server)
	m.rooms[code] = room
	m.mu.Unlock()

	if err := room.AddPlayer(client); err != nil {
		m.RemoveRoom(code)
		return nil, err
	}
	logger.LogInfo("房间 %s 创建，房主 %s", code, client.GetName())
	return room, nil
}

// JoinRoom 按房间号加入。口令在这里校验，入座在房间里校验。
func (m *RoomManager) JoinRoom(client types.ClientInterface, code, password string) (*Room, error) {
	room := m.GetRoom(code)
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if !room.CheckPassword(password) {
		return nil, ErrWrongPassword
	}
	if err := room.AddPlayer(client); err != nil {
		return nil, err
	}
	return room, nil
}

// RejoinByName 令牌丢失时的兜底：按名字匹配某个离线座位重连
func (m *RoomManager) RejoinByName(client types.ClientInterface, code, name string) (*Room, error) {
	room := m.GetRoom(code)
	if room == nil {
		return nil, ErrRoomNotFound
	}
	seat := room.findOfflineByName(name)
	if seat == nil {
		return nil, ErrNotInRoom
	}
	if err := room.ReconnectPlayer(seat.ID, client); err != nil {
		return nil, err
	}
	return room, nil
}

func (m *RoomManager) GetRoom(code string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[code]
}

// RemoveRoom 解散房间
func (m *RoomManager) RemoveRoom(code string) {
	m.mu.Lock()
	room := m.rooms[code]
	delete(m.rooms, code)
	m.mu.Unlock()
	if room != nil {
		room.StopSession()
		logger.LogInfo("房间 %s 解散", code)
	}
}

// LeaveRoom 成员退出；最后一个真人走了就解散
func (m *RoomManager) LeaveRoom(room *Room, playerID string) {
	empty := room.RemovePlayer(playerID)
	if empty {
		m.RemoveRoom(room.GetCode())
		return
	}
	room.BroadcastRoomUpdate()
}

// ListRooms 等待中的公开房间列表，按房间号排序
func (m *RoomManager) ListRooms() []protocol.RoomListItem {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	items := make([]protocol.RoomListItem, 0, len(rooms))
	for _, r := range rooms {
		if r.GetState() != types.RoomStateWaiting {
			continue
		}
		items = append(items, protocol.RoomListItem{
			RoomCode:    r.GetCode(),
			PlayerCount: r.PlayerCount(),
			MaxPlayers:  MaxPlayers,
			HasPassword: r.HasPassword(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RoomCode < items[j].RoomCode })
	return items
}

// RoomCount 当前房间数
func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// newCode 生成未占用的房间号。调用方持锁。
func (m *RoomManager) newCode() string {
	buf := make([]byte, roomCodeLength)
	for {
		if _, err := rand.Read(buf); err != nil {
			panic(err) // crypto/rand 不可用属于环境性致命错误
		}
		code := make([]byte, roomCodeLength)
		for i, b := range buf {
			code[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
		}
		if _, taken := m.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

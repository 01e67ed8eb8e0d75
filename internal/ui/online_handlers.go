package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// handleServerMessage 处理服务器消息
// 按消息类型分发到具体的处理函数
func (m *OnlineModel) handleServerMessage(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	// 连接相关
	case protocol.MsgConnected:
		return m.handleMsgConnected(msg)
	case protocol.MsgReconnected:
		return m.handleMsgReconnected(msg)
	case protocol.MsgPong:
		return m.handleMsgPong(msg)
	case protocol.MsgError:
		return m.handleMsgError(msg)

	// 房间相关
	case protocol.MsgRoomCreated:
		return m.handleMsgRoomCreated(msg)
	case protocol.MsgRoomJoined:
		return m.handleMsgRoomJoined(msg)
	case protocol.MsgPlayerJoined:
		return m.handleMsgPlayerJoined(msg)
	case protocol.MsgPlayerLeft:
		return m.handleMsgPlayerLeft(msg)
	case protocol.MsgPlayerOffline:
		return m.handleMsgPlayerOffline(msg)
	case protocol.MsgPlayerOnline:
		return m.handleMsgPlayerOnline(msg)
	case protocol.MsgRoomUpdate:
		return m.handleMsgRoomUpdate(msg)
	case protocol.MsgRoomListResult:
		return m.handleMsgRoomListResult(msg)

	// 比赛相关
	case protocol.MsgMatchStarted:
		return m.handleMsgMatchStarted(msg)
	case protocol.MsgGameState:
		return m.handleMsgGameState(msg)
	case protocol.MsgMatchOver:
		return m.handleMsgMatchOver(msg)

	// 其他
	case protocol.MsgLeaderboardResult:
		return m.handleMsgLeaderboardResult(msg)
	case protocol.MsgChatRelay:
		return m.handleMsgChatRelay(msg)
	}

	return nil
}

// --- 连接相关消息处理 ---

func (m *OnlineModel) handleMsgConnected(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ConnectedPayload](msg)
	if err != nil {
		return nil
	}

	m.playerID = payload.PlayerID
	m.playerName = payload.PlayerName
	m.client.ReconnectToken = payload.ReconnectToken

	m.input.Placeholder = "输入选项 (1-5) 或房间号"
	m.input.Focus()
	return nil
}

func (m *OnlineModel) handleMsgReconnected(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ReconnectedPayload](msg)
	if err != nil {
		return nil
	}

	m.playerID = payload.PlayerID
	// 只有当 payload 中有名字时才更新，避免被空字符串覆盖
	if payload.PlayerName != "" {
		m.playerName = payload.PlayerName
	} else if m.playerName == "" && m.client.PlayerName != "" {
		m.playerName = m.client.PlayerName
	}

	if payload.RoomCode != "" {
		m.game.roomCode = payload.RoomCode
		if payload.GameState != nil {
			m.game.state = payload.GameState
			m.applyServerPhase(payload.GameState.Phase)
		} else {
			m.phase = PhaseWaiting
		}
	} else {
		m.phase = PhaseLobby
		m.input.Placeholder = "输入选项 (1-5) 或房间号"
		m.input.Focus()
	}
	return nil
}

func (m *OnlineModel) handleMsgPong(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PongPayload](msg)
	if err != nil {
		return nil
	}
	m.latency = time.Now().UnixMilli() - payload.ClientTimestamp
	return nil
}

func (m *OnlineModel) handleMsgError(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
	if err != nil {
		return nil
	}

	m.error = fmt.Sprintf("⚠️ %s", payload.Message)

	// 3秒后自动消失
	return tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
		return ClearErrorMsg{}
	})
}

// --- 房间相关消息处理 ---

func (m *OnlineModel) handleMsgRoomCreated(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomCreatedPayload](msg)
	if err != nil {
		return nil
	}
	m.game.roomCode = payload.RoomCode
	m.game.hostID = payload.Player.ID
	m.game.players = []protocol.PlayerInfo{payload.Player}
	m.phase = PhaseWaiting
	m.input.Placeholder = "B=加机器人  S=开始比赛"
	return nil
}

func (m *OnlineModel) handleMsgRoomJoined(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomJoinedPayload](msg)
	if err != nil {
		return nil
	}
	m.game.roomCode = payload.RoomCode
	m.game.players = payload.Players
	for _, p := range payload.Players {
		if p.IsHost {
			m.game.hostID = p.ID
		}
	}
	m.phase = PhaseWaiting
	m.input.Placeholder = "等待房主开始比赛..."
	return nil
}

func (m *OnlineModel) handleMsgPlayerJoined(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PlayerJoinedPayload](msg)
	if err != nil {
		return nil
	}
	m.game.players = append(m.game.players, payload.Player)
	return nil
}

func (m *OnlineModel) handleMsgPlayerLeft(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PlayerLeftPayload](msg)
	if err != nil {
		return nil
	}
	for i, p := range m.game.players {
		if p.ID == payload.PlayerID {
			m.game.players = append(m.game.players[:i], m.game.players[i+1:]...)
			break
		}
	}
	return nil
}

func (m *OnlineModel) handleMsgPlayerOffline(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PlayerOfflinePayload](msg)
	if err != nil {
		return nil
	}
	for i, p := range m.game.players {
		if p.ID == payload.PlayerID {
			m.game.players[i].Online = false
			break
		}
	}
	return nil
}

func (m *OnlineModel) handleMsgPlayerOnline(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.PlayerOnlinePayload](msg)
	if err != nil {
		return nil
	}
	for i, p := range m.game.players {
		if p.ID == payload.PlayerID {
			m.game.players[i].Online = true
			break
		}
	}
	return nil
}

func (m *OnlineModel) handleMsgRoomUpdate(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomSnapshot](msg)
	if err != nil {
		return nil
	}
	m.game.roomCode = payload.RoomCode
	m.game.hostID = payload.HostID
	m.game.players = payload.Players
	return nil
}

func (m *OnlineModel) handleMsgRoomListResult(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomListPayload](msg)
	if err != nil {
		return nil
	}
	m.lobby.availableRooms = payload.Rooms
	m.lobby.selectedRoomIdx = 0
	return nil
}

// --- 比赛相关消息处理 ---

func (m *OnlineModel) handleMsgMatchStarted(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.RoomSnapshot](msg)
	if err != nil {
		return nil
	}
	m.game.players = payload.Players
	m.phase = PhaseTable
	m.input.Focus()
	return nil
}

func (m *OnlineModel) handleMsgGameState(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.GameStateDTO](msg)
	if err != nil {
		return nil
	}
	m.game.state = payload
	m.applyServerPhase(payload.Phase)
	return nil
}

func (m *OnlineModel) handleMsgMatchOver(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.MatchOverPayload](msg)
	if err != nil {
		return nil
	}
	m.game.ranking = payload.Ranking
	m.phase = PhaseMatchOver
	m.input.Placeholder = "按回车返回大厅"
	return nil
}

// applyServerPhase 根据服务端比赛阶段切换界面阶段
func (m *OnlineModel) applyServerPhase(phase string) {
	switch phase {
	case "waiting":
		m.phase = PhaseWaiting
	case "game_end":
		m.phase = PhaseMatchOver
	default:
		m.phase = PhaseTable
	}
}

// --- 其他消息处理 ---

func (m *OnlineModel) handleMsgLeaderboardResult(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.LeaderboardPayload](msg)
	if err != nil {
		return nil
	}
	m.lobby.leaderboard = payload.Entries
	return nil
}

func (m *OnlineModel) handleMsgChatRelay(msg *protocol.Message) tea.Cmd {
	payload, err := protocol.ParsePayload[protocol.ChatRelayPayload](msg)
	if err != nil {
		return nil
	}
	line := fmt.Sprintf("%s: %s", truncateName(payload.PlayerName, 8), payload.Text)
	m.game.chatHistory = append(m.game.chatHistory, line)
	if len(m.game.chatHistory) > 50 {
		m.game.chatHistory = m.game.chatHistory[len(m.game.chatHistory)-50:]
	}
	return nil
}

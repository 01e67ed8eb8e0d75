package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mpopesco/whist-go/internal/network/client"
	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// 界面阶段
type UIPhase int

const (
	PhaseConnecting UIPhase = iota
	PhaseLobby
	PhaseRoomList
	PhaseWaiting
	PhaseTable
	PhaseMatchOver
	PhaseLeaderboard
	PhaseRules
)

// ServerMessage 服务器消息（用于 tea.Msg）
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg 连接成功消息
type ConnectedMsg struct{}

// ConnectionErrorMsg 连接错误消息
type ConnectionErrorMsg struct {
	Err error
}

// ReconnectingMsg 正在重连消息
type ReconnectingMsg struct {
	Attempt  int
	MaxTries int
}

// ReconnectSuccessMsg 重连成功消息
type ReconnectSuccessMsg struct{}

// ClearReconnectMsg 清除重连消息
type ClearReconnectMsg struct{}

// ClearErrorMsg 清除错误消息
type ClearErrorMsg struct{}

// OnlineModel 联网模式的 model
type OnlineModel struct {
	client *client.Client
	phase  UIPhase
	error  string

	// 玩家信息
	playerID   string
	playerName string

	// 网络状态
	latency int64 // 延迟（毫秒）

	// 重连状态
	reconnecting      bool
	reconnectAttempt  int
	reconnectMaxTries int
	reconnectSuccess  bool
	reconnectMessage  string
	reconnectChan     chan tea.Msg

	// Sub-models
	lobby *LobbyModel
	game  *GameModel

	// UI 组件
	input  *textinput.Model
	width  int
	height int
}

// NewOnlineModel 创建联网模式 model
func NewOnlineModel(serverURL string) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = "输入房间号..."
	ti.CharLimit = 20
	ti.Width = 30
	ti.Focus()

	c := client.NewClient(serverURL)
	reconnectChan := make(chan tea.Msg, 10)

	m := &OnlineModel{
		client:            c,
		phase:             PhaseConnecting,
		input:             &ti,
		reconnectMaxTries: 5,
		reconnectChan:     reconnectChan,
		lobby:             NewLobbyModel(c, &ti),
		game:              NewGameModel(c, &ti),
	}

	// 重连回调通过 channel 转成 Bubble Tea 消息
	c.OnReconnecting = func(attempt, maxTries int) {
		select {
		case reconnectChan <- ReconnectingMsg{Attempt: attempt, MaxTries: maxTries}:
		default:
		}
	}

	c.OnReconnect = func() {
		select {
		case reconnectChan <- ReconnectSuccessMsg{}:
		default:
		}
	}

	return m
}

func (m *OnlineModel) Init() tea.Cmd {
	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
		m.listenForReconnect(),
	)
}

// listenForReconnect 监听重连消息
func (m *OnlineModel) listenForReconnect() tea.Cmd {
	return func() tea.Msg {
		msg := <-m.reconnectChan
		return msg
	}
}

// connectToServer 连接服务器
func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

// listenForMessages 监听服务器消息
func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.client.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.lobby.width = msg.Width
		m.lobby.height = msg.Height
		m.game.width = msg.Width
		m.game.height = msg.Height

	case tea.KeyMsg:
		handled, returnCmd := m.handleKeyPress(msg)
		if handled {
			return m, returnCmd
		}

	case ConnectedMsg:
		m.phase = PhaseLobby
		m.playerID = m.client.PlayerID
		m.playerName = m.client.PlayerName
		m.client.StartHeartbeat()
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.error = fmt.Sprintf("无法连接到服务器: %v\n\n按 ESC 退出", msg.Err)
		m.phase = PhaseConnecting

	case ReconnectingMsg:
		m.reconnecting = true
		m.reconnectAttempt = msg.Attempt
		m.reconnectMaxTries = msg.MaxTries
		m.reconnectSuccess = false
		m.reconnectMessage = fmt.Sprintf("🔄 正在重连 (%d/%d)...", msg.Attempt, msg.MaxTries)
		cmds = append(cmds, m.listenForReconnect())

	case ReconnectSuccessMsg:
		m.reconnecting = false
		m.reconnectSuccess = true
		m.reconnectMessage = "✅ 重连成功！"
		cmds = append(cmds, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return ClearReconnectMsg{}
		}))
		cmds = append(cmds, m.listenForReconnect())
		// 重连后 receive channel 被重置，需要重新监听
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}

	case ClearReconnectMsg:
		m.reconnectSuccess = false
		m.reconnectMessage = ""

	case ClearErrorMsg:
		m.error = ""

	case ServerMessage:
		cmd = m.handleServerMessage(msg.Msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.client.IsConnected() {
			cmds = append(cmds, m.listenForMessages())
		}
	}

	newInput, cmd := m.input.Update(msg)
	*m.input = newInput
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress 处理按键消息，返回是否已处理和命令
func (m *OnlineModel) handleKeyPress(msg tea.KeyMsg) (bool, tea.Cmd) {
	// 聊天输入框获得焦点时优先处理
	chatInput := m.focusedChatInput()
	if chatInput != nil {
		switch msg.Type {
		case tea.KeyEnter:
			content := strings.TrimSpace(chatInput.Value())
			if content != "" {
				if err := m.client.Chat(content); err != nil {
					m.error = fmt.Sprintf("发送消息失败: %v", err)
				}
				chatInput.SetValue("")
			}
			return true, nil
		case tea.KeyEsc:
			chatInput.Blur()
			return true, nil
		default:
			var cmd tea.Cmd
			*chatInput, cmd = chatInput.Update(msg)
			return true, cmd
		}
	}

	if msg.String() == "/" && (m.phase == PhaseWaiting || m.phase == PhaseTable) {
		m.game.chatInput.Focus()
		return true, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m.handleEscKey()
	case tea.KeyUp:
		m.lobby.handleUpKey(m.phase)
		return false, nil
	case tea.KeyDown:
		m.lobby.handleDownKey(m.phase)
		return false, nil
	case tea.KeyRunes:
		return m.handleRuneKey(msg)
	case tea.KeyEnter:
		cmd := m.handleEnter()
		return false, cmd
	}
	return false, nil
}

// focusedChatInput 返回当前获得焦点的聊天输入框
func (m *OnlineModel) focusedChatInput() *textinput.Model {
	if m.game.chatInput.Focused() {
		return &m.game.chatInput
	}
	return nil
}

// handleEscKey 处理 ESC 键
func (m *OnlineModel) handleEscKey() (bool, tea.Cmd) {
	if m.game.showingHelp {
		m.game.showingHelp = false
		return true, nil
	}
	// 从特定页面返回大厅
	if m.phase == PhaseRoomList || m.phase == PhaseLeaderboard || m.phase == PhaseRules {
		m.phase = PhaseLobby
		m.error = ""
		m.input.Reset()
		m.input.Placeholder = "输入选项 (1-5) 或房间号"
		m.input.Focus()
		return true, nil
	}
	// 比赛中 ESC 不退出，避免误操作
	if m.phase == PhaseTable {
		m.error = "比赛进行中，无法退出！"
		return true, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return ClearErrorMsg{}
		})
	}
	// 等待房间中 ESC 离开房间
	if m.phase == PhaseWaiting {
		_ = m.client.LeaveRoom()
		m.phase = PhaseLobby
		m.resetGameState()
		return true, nil
	}
	m.client.Close()
	return true, tea.Quit
}

// handleRuneKey 处理字符键（H 等）
func (m *OnlineModel) handleRuneKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if len(msg.Runes) == 0 {
		return false, nil
	}

	// H 键查看帮助
	if msg.Runes[0] == 'h' || msg.Runes[0] == 'H' {
		if m.phase == PhaseTable {
			m.game.showingHelp = !m.game.showingHelp
			return true, nil
		}
	}

	return false, nil
}

// handleEnter 处理回车键
func (m *OnlineModel) handleEnter() tea.Cmd {
	input := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	m.error = ""

	switch m.phase {
	case PhaseLobby:
		// 如果输入为空，使用选中的菜单项
		if input == "" {
			input = fmt.Sprintf("%d", m.lobby.selectedIndex+1)
		}

		switch input {
		case "1":
			_ = m.client.CreateRoom(m.playerName, "")
		case "2":
			m.input.Placeholder = "输入房间号 [口令]..."
			m.input.Focus()
		case "3":
			m.phase = PhaseRoomList
			m.lobby.selectedRoomIdx = 0
			m.input.Placeholder = "或直接输入房间号..."
			m.input.Focus()
			_ = m.client.GetRoomList()
		case "4":
			m.phase = PhaseLeaderboard
			_ = m.client.GetLeaderboard(10)
		case "5":
			m.phase = PhaseRules
		default:
			// 可能是 "房间号" 或 "房间号 口令"
			if input != "" {
				m.joinRoomFromInput(input)
			}
		}

	case PhaseRoomList:
		if input == "" {
			if len(m.lobby.availableRooms) > 0 && m.lobby.selectedRoomIdx < len(m.lobby.availableRooms) {
				roomCode := m.lobby.availableRooms[m.lobby.selectedRoomIdx].RoomCode
				_ = m.client.JoinRoom(roomCode, m.playerName, "")
			}
		} else {
			m.joinRoomFromInput(input)
		}

	case PhaseWaiting:
		switch strings.ToLower(input) {
		case "b", "bot":
			_ = m.client.AddBot()
		case "s", "start":
			_ = m.client.StartMatch()
		}

	case PhaseTable:
		m.handleTableInput(input)

	case PhaseMatchOver:
		m.phase = PhaseLobby
		m.input.Placeholder = "输入选项 (1-5) 或房间号"
		m.input.Focus()
		m.resetGameState()
	}

	return nil
}

// joinRoomFromInput 解析 "房间号 [口令]" 输入并加入
func (m *OnlineModel) joinRoomFromInput(input string) {
	parts := strings.Fields(input)
	code := strings.ToUpper(parts[0])
	password := ""
	if len(parts) > 1 {
		password = parts[1]
	}
	_ = m.client.JoinRoom(code, m.playerName, password)
}

// handleTableInput 比赛中的输入按阶段解析
func (m *OnlineModel) handleTableInput(input string) {
	gs := m.game.state
	if gs == nil {
		return
	}

	switch gs.Phase {
	case "choose_trump":
		if m.game.isMyTurn(m.playerID) && input != "" {
			_ = m.client.ChooseTrump(strings.ToUpper(input))
		}
	case "bidding":
		if m.game.isMyTurn(m.playerID) {
			if value, err := strconv.Atoi(input); err == nil {
				_ = m.client.Bid(value)
			} else {
				m.error = "请输入叫墩数，如 0、1、2"
			}
		}
	case "playing":
		if m.game.isMyTurn(m.playerID) && input != "" {
			_ = m.client.PlayCard(strings.ToUpper(input))
		}
	case "hand_end":
		_ = m.client.NextHand()
	}
}

// resetGameState 重置游戏状态
func (m *OnlineModel) resetGameState() {
	m.game.roomCode = ""
	m.game.hostID = ""
	m.game.players = nil
	m.game.state = nil
	m.game.ranking = nil
	m.game.chatHistory = nil
	m.input.Placeholder = "输入选项 (1-5) 或房间号"
}

func (m *OnlineModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string

	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	case PhaseLobby:
		content = m.lobby.lobbyView(m)
	case PhaseRoomList:
		content = m.lobby.roomListView(m)
	case PhaseWaiting:
		content = m.game.waitingView(m)
	case PhaseTable:
		content = m.game.tableView(m)
	case PhaseMatchOver:
		content = m.game.matchOverView()
	case PhaseLeaderboard:
		content = m.lobby.leaderboardView()
	case PhaseRules:
		content = m.game.rulesView()
	}

	return docStyle.Render(content)
}

func (m *OnlineModel) connectingView() string {
	if m.error != "" {
		return errorStyle.Render(m.error)
	}
	return "正在连接服务器..."
}

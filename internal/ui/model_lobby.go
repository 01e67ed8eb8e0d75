package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mpopesco/whist-go/internal/network/client"
	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// menuItemCount 大厅菜单项数量
const menuItemCount = 5

// LobbyModel handles the lobby interface (Menu, Room List, Leaderboard)
type LobbyModel struct {
	client *client.Client
	width  int
	height int

	// Navigation
	selectedIndex int // Menu index

	// Data
	availableRooms  []protocol.RoomListItem
	selectedRoomIdx int
	leaderboard     []protocol.LeaderboardEntry

	// Chat
	chatHistory []string
	chatInput   textinput.Model

	// Input
	input *textinput.Model
}

func NewLobbyModel(c *client.Client, input *textinput.Model) *LobbyModel {
	chatInput := textinput.New()
	chatInput.Placeholder = "按 / 键聊天..."
	chatInput.CharLimit = 50
	chatInput.Width = 45

	return &LobbyModel{
		client:    c,
		input:     input,
		chatInput: chatInput,
	}
}

func (m *LobbyModel) Init() tea.Cmd {
	return nil
}

func (m *LobbyModel) View() string {
	return "" // Not used directly, managed by OnlineModel
}

// Update handles lobby-specific updates
func (m *LobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The parent OnlineModel handles global keys (Esc, etc.) and server messages
	return m, nil
}

func (m *LobbyModel) lobbyView(onlineModel *OnlineModel) string {
	var sb strings.Builder

	title := titleStyle("🃏 惠斯特在线")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if onlineModel.playerName != "" {
		welcome := fmt.Sprintf("欢迎, %s!", onlineModel.playerName)
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, welcome))
		sb.WriteString("\n")

		if onlineModel.reconnecting || onlineModel.reconnectSuccess {
			var reconnectStyle lipgloss.Style
			if onlineModel.reconnectSuccess {
				reconnectStyle = okStyle.Bold(true)
			} else {
				reconnectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
			}
			sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, reconnectStyle.Render(onlineModel.reconnectMessage)))
		}
		sb.WriteString("\n")
	}

	menuItems := []string{
		"1. 创建房间",
		"2. 加入房间",
		"3. 房间列表",
		"4. 排行榜",
		"5. 游戏规则",
	}

	var menuLines []string
	menuLines = append(menuLines, "请选择:", "")
	for i, item := range menuItems {
		prefix := "  "
		if i == m.selectedIndex {
			prefix = "▶ "
		}
		menuLines = append(menuLines, prefix+item)
	}

	menu := boxStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, menuLines...))
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, menu))
	sb.WriteString("\n\n")

	m.input.Placeholder = "↑↓ 选择 | 回车确认 | 或输入房间号"
	inputView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View())
	sb.WriteString(inputView)

	if onlineModel.error != "" {
		errorView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "\n"+errorStyle.Render(onlineModel.error))
		sb.WriteString(errorView)
	}

	return sb.String()
}

func (m *LobbyModel) roomListView(onlineModel *OnlineModel) string {
	var sb strings.Builder

	title := titleStyle("📋 可加入的房间")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if len(m.availableRooms) == 0 {
		noRooms := "暂无可加入的房间\n\n按 ESC 返回大厅"
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, noRooms))
	} else {
		var roomList strings.Builder
		roomList.WriteString("房间列表:\n\n")

		for i, room := range m.availableRooms {
			prefix := "  "
			if i == m.selectedRoomIdx {
				prefix = "▶ "
			}
			lock := ""
			if room.HasPassword {
				lock = " 🔒"
			}
			roomList.WriteString(fmt.Sprintf("%s房间 %s  (%d/%d)%s\n",
				prefix, room.RoomCode, room.PlayerCount, room.MaxPlayers, lock))
		}

		roomList.WriteString("\n↑↓ 选择  回车加入  ESC 返回")

		roomBox := boxStyle.Render(roomList.String())
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, roomBox))
		sb.WriteString("\n\n")
	}

	inputView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View())
	sb.WriteString(inputView)

	if onlineModel.error != "" {
		errorView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "\n"+errorStyle.Render(onlineModel.error))
		sb.WriteString(errorView)
	}

	return sb.String()
}

func (m *LobbyModel) leaderboardView() string {
	var sb strings.Builder

	title := titleStyle("🏆 排行榜")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	if len(m.leaderboard) > 0 {
		leaderboard := m.renderLeaderboardTable()
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, leaderboard))
	} else {
		noData := "正在加载排行榜..."
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, noData))
	}

	sb.WriteString("\n\n")
	hint := "按 ESC 返回大厅"
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hint))

	return sb.String()
}

func (m *LobbyModel) renderLeaderboardTable() string {
	var sb strings.Builder
	sb.WriteString("🏆 排行榜 TOP 10\n")
	sb.WriteString(strings.Repeat("─", 50) + "\n")
	sb.WriteString(fmt.Sprintf("%-4s %-12s %8s %6s %8s\n", "排名", "玩家", "积分", "胜场", "胜率"))
	sb.WriteString(strings.Repeat("─", 50) + "\n")

	for _, e := range m.leaderboard {
		rankIcon := ""
		switch e.Rank {
		case 1:
			rankIcon = "🥇"
		case 2:
			rankIcon = "🥈"
		case 3:
			rankIcon = "🥉"
		default:
			rankIcon = fmt.Sprintf("%2d.", e.Rank)
		}
		sb.WriteString(fmt.Sprintf("%-4s %-12s %8d %6d %7.1f%%\n",
			rankIcon, truncateName(e.PlayerName, 10), e.Points, e.Wins, e.WinRate))
	}

	return boxStyle.Render(sb.String())
}

func (m *LobbyModel) handleUpKey(phase UIPhase) {
	if phase == PhaseRoomList && len(m.availableRooms) > 0 {
		m.selectedRoomIdx--
		if m.selectedRoomIdx < 0 {
			m.selectedRoomIdx = len(m.availableRooms) - 1
		}
	} else if phase == PhaseLobby {
		m.selectedIndex--
		if m.selectedIndex < 0 {
			m.selectedIndex = menuItemCount - 1
		}
	}
}

func (m *LobbyModel) handleDownKey(phase UIPhase) {
	if phase == PhaseRoomList && len(m.availableRooms) > 0 {
		m.selectedRoomIdx++
		if m.selectedRoomIdx >= len(m.availableRooms) {
			m.selectedRoomIdx = 0
		}
	} else if phase == PhaseLobby {
		m.selectedIndex++
		if m.selectedIndex >= menuItemCount {
			m.selectedIndex = 0
		}
	}
}

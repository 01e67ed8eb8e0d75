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

// GameModel handles game-specific logic (Waiting room, Table, Match over)
type GameModel struct {
	client *client.Client
	width  int
	height int

	input *textinput.Model

	// Room Data
	roomCode string
	hostID   string
	players  []protocol.PlayerInfo

	// Match Data - the latest viewer-filtered snapshot
	state   *protocol.GameStateDTO
	ranking []protocol.LeaderboardRow

	// Features
	showingHelp bool

	// Chat
	chatHistory []string
	chatInput   textinput.Model
}

func NewGameModel(c *client.Client, input *textinput.Model) *GameModel {
	chatInput := textinput.New()
	chatInput.Placeholder = "按 / 键聊天..."
	chatInput.CharLimit = 50
	chatInput.Width = 45

	return &GameModel{
		client:    c,
		input:     input,
		chatInput: chatInput,
	}
}

func (m *GameModel) Init() tea.Cmd {
	return nil
}

func (m *GameModel) View() string {
	return "" // Not used directly, managed by OnlineModel
}

func (m *GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Input updates handled by parent OnlineModel
	return m, nil
}

// mySeat 返回自己的座位号，找不到时返回 -1
func (m *GameModel) mySeat(playerID string) int {
	if m.state == nil {
		return -1
	}
	for _, s := range m.state.Seats {
		if s.ID == playerID {
			return s.Seat
		}
	}
	return -1
}

// isMyTurn 当前是否轮到自己行动
func (m *GameModel) isMyTurn(playerID string) bool {
	if m.state == nil || m.state.Turn < 0 {
		return false
	}
	return m.mySeat(playerID) == m.state.Turn
}

// Views

func (m *GameModel) waitingView(onlineModel *OnlineModel) string {
	var sb strings.Builder

	title := titleStyle(fmt.Sprintf("🏠 房间: %s", m.roomCode))
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	var playerList strings.Builder
	playerList.WriteString("玩家列表:\n")
	for _, p := range m.players {
		icon := "  "
		if p.IsHost {
			icon = HostIcon
		} else if p.IsBot {
			icon = BotIcon
		}
		meStr := ""
		if p.ID == onlineModel.playerID {
			meStr = " (你)"
		}
		offlineStr := ""
		if !p.Online && !p.IsBot {
			offlineStr = " (掉线)"
		}
		playerList.WriteString(fmt.Sprintf("  %s %s%s%s\n", icon, p.Name, meStr, offlineStr))
	}
	playerList.WriteString(fmt.Sprintf("\n玩家: %d/6 (至少 3 人开赛)", len(m.players)))

	playerBox := boxStyle.Render(playerList.String())
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, playerBox))
	sb.WriteString("\n\n")

	if m.hostID == onlineModel.playerID {
		hint := hintStyle.Render("输入 B 添加机器人 | 输入 S 开始比赛")
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hint))
		sb.WriteString("\n")
	}

	inputView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.input.View())
	sb.WriteString(inputView)

	chatBox := m.renderChatBox()
	if chatBox != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, chatBox))
	}

	if onlineModel.error != "" {
		errorView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "\n"+errorStyle.Render(onlineModel.error))
		sb.WriteString(errorView)
	}

	return sb.String()
}

func (m *GameModel) tableView(onlineModel *OnlineModel) string {
	if m.state == nil {
		return "等待比赛状态..."
	}

	var sb strings.Builder

	topSection := m.renderTopSection()
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, topSection))
	sb.WriteString("\n")

	seats := m.renderSeats(onlineModel.playerID)
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, seats))
	sb.WriteString("\n")

	trick := m.renderTrick()
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, trick))
	sb.WriteString("\n")

	myHand := m.renderMyHand(onlineModel.playerID)
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, myHand))
	sb.WriteString("\n")

	prompt := m.renderPrompt(onlineModel.playerID)
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, prompt))

	chatBox := m.renderChatBox()
	if chatBox != "" {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, chatBox))
	}

	if onlineModel.error != "" {
		errorView := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, "\n"+errorStyle.Render(onlineModel.error))
		sb.WriteString(errorView)
	}

	gameContent := sb.String()

	if m.showingHelp {
		helpContent := m.renderGameRules()
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			helpContent,
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, gameContent)
}

func (m *GameModel) matchOverView() string {
	var sb strings.Builder
	sb.WriteString("🎮 比赛结束!\n\n")

	for i, row := range m.ranking {
		icon := fmt.Sprintf("%d.", i+1)
		switch i {
		case 0:
			icon = "🥇"
		case 1:
			icon = "🥈"
		case 2:
			icon = "🥉"
		}
		sb.WriteString(fmt.Sprintf("%s %-12s %+d 分\n", icon, truncateName(row.Name, 10), row.Score))
	}

	sb.WriteString("\n按回车返回大厅")

	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Render(sb.String())
}

// renderTopSection 显示局数、主牌和庄家
func (m *GameModel) renderTopSection() string {
	gs := m.state

	trumpView := "无主"
	if gs.Trump != "" {
		trumpView = renderSuitLetter(gs.Trump)
	}

	info := fmt.Sprintf("第 %d/%d 局 · 每人 %d 张 · 主牌: %s",
		gs.HandIndex, gs.HandCount, gs.HandSize, trumpView)
	return boxStyle.Padding(0, 1).Render(info)
}

// renderSeats 座位状态一览：叫墩、已得墩数、总分、连胜标记
func (m *GameModel) renderSeats(myPlayerID string) string {
	gs := m.state
	var parts []string

	for _, s := range gs.Seats {
		nameStyle := lipgloss.NewStyle()
		if gs.Turn == s.Seat {
			nameStyle = turnStyle
		}

		name := truncateName(s.Name, 8)
		if s.ID == myPlayerID {
			name += "(你)"
		}
		icon := ""
		if s.IsBot {
			icon = BotIcon
		}
		if gs.Dealer == s.Seat {
			icon += DealerIcon
		}

		bidStr := "-"
		if s.Bid != nil {
			bidStr = fmt.Sprintf("%d", *s.Bid)
		}

		streakStr := ""
		switch s.Streak.Type {
		case "success":
			streakStr = fmt.Sprintf(" 🔥%d", s.Streak.Count)
		case "failure":
			streakStr = fmt.Sprintf(" 💔%d", s.Streak.Count)
		}

		offlineStr := ""
		if !s.Online && !s.IsBot {
			offlineStr = "\n(掉线)"
		}

		info := fmt.Sprintf("%s %s\n叫%s 得%d\n%d分%s%s",
			icon, nameStyle.Render(name), bidStr, s.Tricks, s.Score, streakStr, offlineStr)
		parts = append(parts, boxStyle.Width(14).Render(info))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderTrick 当前墩的出牌
func (m *GameModel) renderTrick() string {
	gs := m.state

	if len(gs.Trick) == 0 {
		return boxStyle.Width(30).Render("(等待出牌...)")
	}

	var plays []string
	for _, p := range gs.Trick {
		name := "?"
		for _, s := range gs.Seats {
			if s.Seat == p.Seat {
				name = truncateName(s.Name, 6)
				break
			}
		}
		plays = append(plays, fmt.Sprintf("%s: %s", name, renderCardToken(p.Card)))
	}

	return boxStyle.Width(30).Render("本墩:\n" + strings.Join(plays, "  "))
}

// renderMyHand 自己的手牌，隐藏牌显示为背面
func (m *GameModel) renderMyHand(myPlayerID string) string {
	seat := m.mySeat(myPlayerID)
	if seat < 0 {
		return boxStyle.Render("(旁观中)")
	}

	hand := m.state.Hands[seat]
	if len(hand) == 0 {
		return boxStyle.Render("(无手牌)")
	}

	var cards []string
	for _, c := range hand {
		if c.Hidden {
			cards = append(cards, grayStyle.Margin(0, 1).Render("??"))
			continue
		}
		cards = append(cards, renderCardToken(c.Token))
	}

	title := fmt.Sprintf("我的手牌 (%d张)", len(hand))
	content := lipgloss.JoinVertical(lipgloss.Center, title, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	return boxStyle.Render(content)
}

func (m *GameModel) renderPrompt(myPlayerID string) string {
	var sb strings.Builder

	gs := m.state
	myTurn := m.isMyTurn(myPlayerID)

	switch gs.Phase {
	case "choose_trump":
		if myTurn {
			sb.WriteString("轮到你亮主! 输入花色 (S/H/D/C)\n")
		} else {
			fmt.Fprintf(&sb, "等待 %s 亮主...\n", m.turnName())
		}
	case "bidding":
		if myTurn {
			fmt.Fprintf(&sb, "轮到你叫墩! 输入 0-%d\n", gs.HandSize)
		} else {
			fmt.Fprintf(&sb, "等待 %s 叫墩...\n", m.turnName())
		}
	case "playing":
		if myTurn {
			sb.WriteString("轮到你出牌! 输入牌面 (如 AS、10H)\n")
		} else {
			fmt.Fprintf(&sb, "等待 %s 出牌...\n", m.turnName())
		}
	case "trick_pause":
		sb.WriteString("本墩结束...\n")
	case "hand_end":
		sb.WriteString("本局结束! 按回车进入下一局\n")
	}

	if myTurn || gs.Phase == "hand_end" {
		sb.WriteString(m.input.View())
	} else {
		sb.WriteString(hintStyle.Render("/ 键聊天, H 键帮助"))
	}

	return promptStyle.Render(sb.String())
}

// turnName 当前行动座位的玩家名
func (m *GameModel) turnName() string {
	gs := m.state
	for _, s := range gs.Seats {
		if s.Seat == gs.Turn {
			return s.Name
		}
	}
	return "?"
}

func (m *GameModel) renderGameRules() string {
	var sb strings.Builder
	sb.WriteString("📖 惠斯特游戏规则\n")
	sb.WriteString(strings.Repeat("─", 60) + "\n\n")

	sb.WriteString("【游戏目标】\n")
	sb.WriteString("每局先叫墩再打牌，恰好拿到自己叫的墩数得高分\n\n")

	sb.WriteString("【牌组】\n")
	sb.WriteString("按人数裁剪牌组：每门花色保留最高的 2n 张 (n=人数)\n")
	sb.WriteString("点数从高到低: A K Q J 10 9 ...\n\n")

	sb.WriteString("【局程】\n")
	sb.WriteString("1-x-8-x-1 结构: 先打 1 张局，再升到 8 张局，再降回 1 张\n")
	sb.WriteString("1 张局与 8 张局各重复 n 次，庄家每局轮转\n\n")

	sb.WriteString("【叫墩规则】\n")
	sb.WriteString("1. 从庄家下家开始依次叫墩，0 到手牌数\n")
	sb.WriteString("2. 庄家最后叫，且所有人叫墩之和不能等于手牌数\n\n")

	sb.WriteString("【出牌规则】\n")
	sb.WriteString("1. 必须跟出首家花色；没有时必须出主牌（若有）\n")
	sb.WriteString("2. 主牌最大者赢墩；无主牌时首家花色最大者赢\n")
	sb.WriteString("3. 赢墩者先出下一墩\n\n")

	sb.WriteString("【计分】\n")
	sb.WriteString("叫中: 5 + 叫墩数 | 叫偏: -|差值|\n")
	sb.WriteString("连中 5 局奖 10 分，连偏 5 局罚 10 分\n\n")

	sb.WriteString("【快捷键】\n")
	sb.WriteString("• /：聊天\n")
	sb.WriteString("• H：显示/隐藏帮助（游戏中）\n")
	sb.WriteString("• ESC：返回上一级或退出\n")

	return boxStyle.Render(sb.String())
}

func (m *GameModel) rulesView() string {
	var sb strings.Builder

	title := titleStyle("📖 游戏规则")
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, title))
	sb.WriteString("\n\n")

	rules := m.renderGameRules()
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, rules))
	sb.WriteString("\n\n")

	hint := "按 ESC 返回大厅"
	sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, hint))

	return sb.String()
}

// renderChatBox 聊天记录框，最多显示最近 5 条
func (m *GameModel) renderChatBox() string {
	if len(m.chatHistory) == 0 && !m.chatInput.Focused() {
		return ""
	}

	var chatContent string
	if len(m.chatHistory) > 0 {
		var chatBuilder strings.Builder
		count := len(m.chatHistory)
		start := 0
		if count > 5 {
			start = count - 5
		}
		for i := start; i < count; i++ {
			chatBuilder.WriteString(m.chatHistory[i] + "\n")
		}
		chatContent = chatBuilder.String()
	} else {
		chatContent = hintStyle.Render("暂无消息...")
	}

	chatView := m.chatInput.View()
	if !m.chatInput.Focused() {
		chatView = hintStyle.Render("按 / 键聊天...")
	}

	return boxStyle.Width(50).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render("💬 聊天"),
			chatContent,
			chatView,
		),
	)
}

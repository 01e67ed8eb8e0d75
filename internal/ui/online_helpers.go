package ui

import (
	"github.com/mpopesco/whist-go/internal/game/card"
)

// --- 工具函数 ---

// renderCardToken 把牌面编码渲染成带花色符号的彩色字符串
func renderCardToken(token string) string {
	c, err := card.ParseToken(token)
	if err != nil {
		return token
	}

	style := blackStyle
	if c.Suit == card.Heart || c.Suit == card.Diamond {
		style = redStyle
	}
	return style.Margin(0, 1).Render(c.String())
}

// renderSuitLetter 把花色字母渲染成彩色符号
func renderSuitLetter(letter string) string {
	suit, err := card.SuitFromLetter(letter)
	if err != nil {
		return letter
	}

	style := blackStyle
	if suit == card.Heart || suit == card.Diamond {
		style = redStyle
	}
	return style.Render(suit.String())
}

// truncateName 截断玩家名称
func truncateName(name string, maxLen int) string {
	runes := []rune(name)
	if len(runes) > maxLen {
		return string(runes[:maxLen-1]) + "…"
	}
	return name
}

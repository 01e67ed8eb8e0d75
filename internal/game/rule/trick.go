package rule

import (
	"github.com/mpopesco/whist-go/internal/game/card"
)

// Play 一墩中的一次出牌
type Play struct {
	Seat int
	Card card.Card
}

// IsLegalPlay 校验出牌是否合法：
// 有首攻花色必须跟牌；跟不出时手里有主牌必须出主牌；否则任意。
// leadSuit 为 nil 表示本墩首攻，任意手牌皆可。
func IsLegalPlay(hand []card.Card, c card.Card, leadSuit *card.Suit, trump card.Suit) bool {
	if card.IndexOf(hand, c) < 0 {
		return false
	}
	if leadSuit == nil {
		return true
	}
	if c.Suit == *leadSuit {
		return true
	}
	if card.HasSuit(hand, *leadSuit) {
		return false
	}
	if c.Suit == trump {
		return true
	}
	return !card.HasSuit(hand, trump)
}

// LegalPlays 返回当前可以合法打出的所有手牌
func LegalPlays(hand []card.Card, leadSuit *card.Suit, trump card.Suit) []card.Card {
	out := make([]card.Card, 0, len(hand))
	for _, c := range hand {
		if IsLegalPlay(hand, c, leadSuit, trump) {
			out = append(out, c)
		}
	}
	return out
}

// Beats 判断 a 是否大过 b。主牌压一切非主牌；
// 同为主牌或同为首攻花色比点数；其余的牌不可能赢墩。
func Beats(a, b card.Card, leadSuit, trump card.Suit) bool {
	if a.Suit == trump && b.Suit != trump {
		return true
	}
	if b.Suit == trump && a.Suit != trump {
		return false
	}
	if a.Suit == b.Suit {
		return a.Rank > b.Rank
	}
	// 都不是主牌且花色不同：只有首攻花色有效
	return a.Suit == leadSuit && b.Suit != leadSuit
}

// TrickWinner 返回赢墩座位。牌组中没有重复牌，不存在平局。
func TrickWinner(plays []Play, leadSuit, trump card.Suit) int {
	best := 0
	for i := 1; i < len(plays); i++ {
		if Beats(plays[i].Card, plays[best].Card, leadSuit, trump) {
			best = i
		}
	}
	return plays[best].Seat
}

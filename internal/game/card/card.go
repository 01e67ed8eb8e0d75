package card

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
)

// Suit 定义花色
type Suit int

// Rank 定义点数，2-14（11=J, 12=Q, 13=K, 14=A）
type Rank int

const (
	Spade   Suit = iota // 黑桃
	Heart               // 红心
	Diamond             // 方块
	Club                // 梅花
)

// Suits 所有花色，按固定顺序
var Suits = [4]Suit{Spade, Heart, Diamond, Club}

// suitLetters 花色对应的线路协议字母
var suitLetters = map[Suit]string{
	Spade:   "S",
	Heart:   "H",
	Diamond: "D",
	Club:    "C",
}

// suitSymbols 花色符号映射表（用于界面显示）
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return "?"
}

// Letter 返回花色的协议字母
func (s Suit) Letter() string {
	return suitLetters[s]
}

// SuitFromLetter 通过字母查找花色
func SuitFromLetter(letter string) (Suit, error) {
	for suit, l := range suitLetters {
		if l == letter {
			return suit, nil
		}
	}
	return -1, fmt.Errorf("无法识别的花色: %q", letter)
}

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ // Jack
	RankQ // Queen
	RankK // King
	RankA // Ace
)

// rankTokens 高位点数的字面表示，数字点数直接用十进制
var rankTokens = map[Rank]string{
	RankJ: "J",
	RankQ: "Q",
	RankK: "K",
	RankA: "A",
}

func (r Rank) String() string {
	if token, ok := rankTokens[r]; ok {
		return token
	}
	return strconv.Itoa(int(r))
}

// rankFromToken 解析点数字面值
func rankFromToken(token string) (Rank, error) {
	switch token {
	case "J":
		return RankJ, nil
	case "Q":
		return RankQ, nil
	case "K":
		return RankK, nil
	case "A":
		return RankA, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 2 || n > 10 {
		return -1, fmt.Errorf("无法识别的点数: %q", token)
	}
	return Rank(n), nil
}

// Card 定义一张牌，值类型，不可变
type Card struct {
	Suit Suit
	Rank Rank
}

// Token 返回线路编码，如 AS、10H、QD
func (c Card) Token() string {
	return c.Rank.String() + c.Suit.Letter()
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// ParseToken 解析线路编码，与 Token 严格互逆
func ParseToken(token string) (Card, error) {
	if len(token) < 2 {
		return Card{}, fmt.Errorf("无效的牌面编码: %q", token)
	}
	letter := token[len(token)-1:]
	suit, err := SuitFromLetter(strings.ToUpper(letter))
	if err != nil {
		return Card{}, err
	}
	rank, err := rankFromToken(token[:len(token)-1])
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// Deck 定义一副牌
type Deck []Card

// MinRank 返回座位数对应的最小点数：每门花色只保留最高的 2n 张
func MinRank(seats int) Rank {
	return Rank(15 - 2*seats)
}

// NewDeck 按座位数构建缩减牌组：每门花色 2n 张，共 8n 张。
// 座位数超出 3-6 属于配置错误，直接报错。
func NewDeck(seats int) (Deck, error) {
	if seats < 3 || seats > 6 {
		return nil, fmt.Errorf("无效的座位数 %d：牌组只支持 3-6 人", seats)
	}
	deck := make(Deck, 0, 8*seats)
	for _, s := range Suits {
		for r := MinRank(seats); r <= RankA; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck, nil
}

// Shuffle 洗牌
func (d Deck) Shuffle() {
	rand.Shuffle(len(d), func(i, j int) {
		d[i], d[j] = d[j], d[i]
	})
}

// SortHand 为显示排序手牌：按花色分组，同花色从大到小
func SortHand(hand []Card) {
	sort.Slice(hand, func(i, j int) bool {
		if hand[i].Suit != hand[j].Suit {
			return hand[i].Suit < hand[j].Suit
		}
		return hand[i].Rank > hand[j].Rank
	})
}

// HasSuit 检查手牌中是否有指定花色
func HasSuit(hand []Card, suit Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// IndexOf 查找手牌中指定的牌，找不到返回 -1
func IndexOf(hand []Card, target Card) int {
	for i, c := range hand {
		if c == target {
			return i
		}
	}
	return -1
}

// Remove 从手牌中移除一张牌，返回新切片
func Remove(hand []Card, target Card) []Card {
	idx := IndexOf(hand, target)
	if idx < 0 {
		return hand
	}
	out := make([]Card, 0, len(hand)-1)
	out = append(out, hand[:idx]...)
	out = append(out, hand[idx+1:]...)
	return out
}

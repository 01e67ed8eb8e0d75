package server

import (
	"math/rand/v2"
)

// 昵称词库
var (
	adjectives = []string{
		"勇敢的", "聪明的", "快乐的", "神秘的", "沉稳的",
		"机智的", "潇洒的", "温柔的", "淡定的", "闪亮的",
		"谨慎的", "大胆的", "幸运的", "执着的", "冷静的",
	}

	nouns = []string{
		"牌手", "猎人", "船长", "旅人", "棋士",
		"老狐狸", "猫头鹰", "渡鸦", "灰狼", "雄鹰",
		"斗士", "智者", "赌客", "游侠", "判官",
	}
)

// GenerateNickname 生成随机昵称
func GenerateNickname() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	return adj + noun
}

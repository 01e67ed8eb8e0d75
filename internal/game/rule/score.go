package rule

const (
	// ExactBidBonus 叫中时的基础奖励分
	ExactBidBonus = 5
	// StreakLength 触发连胜/连败结算的局数
	StreakLength = 5
	// StreakBonus 连胜奖励 / 连败惩罚的分值
	StreakBonus = 10
)

// StreakType 连续结果类型
type StreakType int

const (
	StreakNone    StreakType = iota // 无
	StreakSuccess                   // 连续叫中
	StreakFailure                   // 连续叫空
)

func (t StreakType) String() string {
	switch t {
	case StreakSuccess:
		return "success"
	case StreakFailure:
		return "failure"
	default:
		return "none"
	}
}

// Streak 一个座位的连续同结果计数，整场比赛内跨局保持
type Streak struct {
	Type  StreakType `json:"type"`
	Count int        `json:"count"`
}

// HandScore 计算单局得分：叫中得 5+墩数，叫空扣差值的绝对值
func HandScore(bid, tricks int) int {
	if bid == tricks {
		return ExactBidBonus + tricks
	}
	diff := bid - tricks
	if diff < 0 {
		diff = -diff
	}
	return -diff
}

// Advance 记入一局结果并返回触发的奖惩分（+10、-10 或 0）。
// 结果类型切换时计数重置为 1；累计到 StreakLength 时结算一次奖惩，
// 随后立刻归零，同一段连续结果只结算一次。
func (s *Streak) Advance(success bool) int {
	outcome := StreakFailure
	if success {
		outcome = StreakSuccess
	}

	if s.Type == outcome {
		s.Count++
	} else {
		s.Type = outcome
		s.Count = 1
	}

	if s.Count < StreakLength {
		return 0
	}

	bonus := StreakBonus
	if outcome == StreakFailure {
		bonus = -StreakBonus
	}
	s.Type = StreakNone
	s.Count = 0
	return bonus
}

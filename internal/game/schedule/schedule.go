package schedule

// HandSizes 计算整场比赛固定的局数序列：
// n 局 1 张，2-7 各一局，n 局 8 张，7-2 各一局，再 n 局 1 张，
// 共 3n+12 局。序列在开局时确定，整场比赛不变。
func HandSizes(seats int) []int {
	sizes := make([]int, 0, 3*seats+12)
	for range seats {
		sizes = append(sizes, 1)
	}
	for size := 2; size <= 7; size++ {
		sizes = append(sizes, size)
	}
	for range seats {
		sizes = append(sizes, 8)
	}
	for size := 7; size >= 2; size-- {
		sizes = append(sizes, size)
	}
	for range seats {
		sizes = append(sizes, 1)
	}
	return sizes
}

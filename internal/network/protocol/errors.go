package protocol

// 错误码：按 §协议违规 / 结构违规 / 配置违规分段的封闭集合
const (
	ErrCodeUnknown    = 1000
	ErrCodeInvalidMsg = 1001
	ErrCodeRateLimit  = 1002 // 速率限制

	// 结构违规
	ErrCodeRoomNotFound  = 2001
	ErrCodeRoomFull      = 2002
	ErrCodeNotInRoom     = 2003
	ErrCodeMatchStarted  = 2004 // 比赛已开始
	ErrCodeWrongPassword = 2005 // 房间口令错误
	ErrCodeNotHost       = 2006 // 仅房主可操作
	ErrCodeTooFewPlayers = 2007 // 人数不足

	// 协议违规
	ErrCodeMatchNotStarted = 3001
	ErrCodeNotYourTurn     = 3002
	ErrCodeWrongPhase      = 3003
	ErrCodeInvalidBid      = 3004 // 叫牌超出范围
	ErrCodeBidHooked       = 3005 // 庄家总和限制
	ErrCodeInvalidCard     = 3006 // 牌面编码无效或不在手中
	ErrCodeIllegalPlay     = 3007 // 违反跟牌/主牌义务
	ErrCodeInvalidSuit     = 3008 // 花色无效

	// 配置违规
	ErrCodeInvalidSeatCount = 4001 // 座位数超出 3-6
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:    "未知错误",
	ErrCodeInvalidMsg: "无效的消息格式",
	ErrCodeRateLimit:  "请求过于频繁",

	ErrCodeRoomNotFound:  "房间不存在",
	ErrCodeRoomFull:      "房间已满",
	ErrCodeNotInRoom:     "您不在房间中",
	ErrCodeMatchStarted:  "比赛已开始",
	ErrCodeWrongPassword: "房间口令错误",
	ErrCodeNotHost:       "只有房主可以执行此操作",
	ErrCodeTooFewPlayers: "至少需要 3 个座位才能开始",

	ErrCodeMatchNotStarted: "比赛尚未开始",
	ErrCodeNotYourTurn:     "还没轮到您",
	ErrCodeWrongPhase:      "当前阶段不能执行此操作",
	ErrCodeInvalidBid:      "叫牌超出范围",
	ErrCodeBidHooked:       "庄家不能叫这个数：总和不能等于手牌数",
	ErrCodeInvalidCard:     "无效的牌",
	ErrCodeIllegalPlay:     "必须跟牌，跟不出时必须出主牌",
	ErrCodeInvalidSuit:     "无效的花色",

	ErrCodeInvalidSeatCount: "座位数必须在 3-6 之间",
}

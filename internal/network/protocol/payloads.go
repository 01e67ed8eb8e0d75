package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	Token    string `json:"token"`     // 重连令牌
	PlayerID string `json:"player_id"` // 原玩家 ID
}

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name     string `json:"name"`               // 房主显示名
	Password string `json:"password,omitempty"` // 可选房间口令
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode       string `json:"room_code"`
	Name           string `json:"name"`                      // 显示名
	Password       string `json:"password,omitempty"`        // 可选房间口令
	ReconnectToken string `json:"reconnect_token,omitempty"` // 比赛中重连用
}

// BidPayload 叫牌请求
type BidPayload struct {
	Value int `json:"value"` // 叫牌数，0 到当前局手牌数
}

// ChooseTrumpPayload 选主牌请求（仅 8 张局）
type ChooseTrumpPayload struct {
	Suit string `json:"suit"` // 花色字母 S/H/D/C
}

// PlayCardPayload 出牌请求
type PlayCardPayload struct {
	Card string `json:"card"` // 牌面编码，如 AS、10H
}

// GetLeaderboardPayload 获取排行榜请求
type GetLeaderboardPayload struct {
	Limit int `json:"limit"` // 数量
}

// ChatPayload 聊天请求
type ChatPayload struct {
	Text string `json:"text"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	ReconnectToken string `json:"reconnect_token"` // 重连令牌
}

// ReconnectedPayload 重连成功响应
type ReconnectedPayload struct {
	PlayerID   string        `json:"player_id"`
	PlayerName string        `json:"player_name"`
	RoomCode   string        `json:"room_code,omitempty"`  // 如果在房间中
	GameState  *GameStateDTO `json:"game_state,omitempty"` // 如果在比赛中
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"`
	ServerTimestamp int64 `json:"server_timestamp"`
}

// PlayerInfo 房间内的玩家信息
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	IsBot  bool   `json:"is_bot,omitempty"`
	IsHost bool   `json:"is_host,omitempty"`
	Online bool   `json:"online"`
}

// RoomCreatedPayload 房间创建成功响应
type RoomCreatedPayload struct {
	RoomCode string     `json:"room_code"`
	Player   PlayerInfo `json:"player"`
}

// RoomJoinedPayload 加入房间成功响应
type RoomJoinedPayload struct {
	RoomCode string       `json:"room_code"`
	Player   PlayerInfo   `json:"player"`
	Players  []PlayerInfo `json:"players"`
}

// PlayerJoinedPayload 其他玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// PlayerOfflinePayload 玩家掉线通知
type PlayerOfflinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Timeout    int    `json:"timeout"` // 等待重连超时（秒）
}

// PlayerOnlinePayload 玩家上线通知
type PlayerOnlinePayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

// RoomSnapshot 房间快照
type RoomSnapshot struct {
	RoomCode    string       `json:"room_code"`
	HostID      string       `json:"host_id"`
	InMatch     bool         `json:"in_match"`
	Phase       string       `json:"phase,omitempty"` // 比赛阶段，空表示未开赛
	HasPassword bool         `json:"has_password,omitempty"`
	Players     []PlayerInfo `json:"players"`
}

// RoomListItem 房间列表条目
type RoomListItem struct {
	RoomCode    string `json:"room_code"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
	HasPassword bool   `json:"has_password,omitempty"`
}

// RoomListPayload 房间列表结果
type RoomListPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// CardInfo 一张牌的投影：Hidden 为真时是占位背面，Token 为空
type CardInfo struct {
	Token  string `json:"token,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

// TrickPlayInfo 当前墩中的一次出牌
type TrickPlayInfo struct {
	Seat int    `json:"seat"`
	Card string `json:"card"` // 牌面编码
}

// StreakInfo 一个座位的连胜/连败状态
type StreakInfo struct {
	Type  string `json:"type"` // none/success/failure
	Count int    `json:"count"`
}

// SeatState 一个座位在比赛中的公开状态
type SeatState struct {
	Seat   int        `json:"seat"`
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	IsBot  bool       `json:"is_bot,omitempty"`
	Online bool       `json:"online"`
	Bid    *int       `json:"bid"` // null 表示尚未叫牌
	Tricks int        `json:"tricks"`
	Score  int        `json:"score"`
	Streak StreakInfo `json:"streak"`
}

// LeaderboardRow 按得分降序的榜单行
type LeaderboardRow struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameStateDTO 按观看者过滤后的比赛状态快照。
// Hands 中只有观看者自己的手牌是明牌，其他座位一律为等量占位背面。
type GameStateDTO struct {
	Phase     string             `json:"phase"`
	Seats     []SeatState        `json:"seats"`      // 按座位顺序
	Dealer    int                `json:"dealer"`     // 庄家座位
	HandIndex int                `json:"hand_index"` // 1 起始
	HandCount int                `json:"hand_count"`
	HandSize  int                `json:"hand_size"`
	Trump     string             `json:"trump,omitempty"` // 花色字母，空表示未定
	Turn      int                `json:"turn"`            // 当前行动座位，-1 表示无人行动
	Trick     []TrickPlayInfo    `json:"trick"`
	Hands     map[int][]CardInfo `json:"hands"`
	Ranking   []LeaderboardRow   `json:"ranking"` // 得分降序
}

// MatchOverPayload 比赛结束通知
type MatchOverPayload struct {
	Ranking []LeaderboardRow `json:"ranking"` // 最终榜单，得分降序
}

// LeaderboardEntry 跨场次排行榜条目
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	Points     int     `json:"points"`
	Matches    int     `json:"matches"`
	Wins       int     `json:"wins"`
	WinRate    float64 `json:"win_rate"`
}

// LeaderboardPayload 跨场次排行榜结果
type LeaderboardPayload struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// ChatRelayPayload 聊天转发
type ChatRelayPayload struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing      MessageType = "ping"      // 心跳 ping
	MsgReconnect MessageType = "reconnect" // 断线重连

	// 房间操作
	MsgCreateRoom  MessageType = "create_room"   // 创建房间
	MsgJoinRoom    MessageType = "join_room"     // 加入房间
	MsgLeaveRoom   MessageType = "leave_room"    // 离开房间
	MsgAddBot      MessageType = "add_bot"       // 添加机器人座位
	MsgStartMatch  MessageType = "start_match"   // 房主开始比赛
	MsgGetRoomList MessageType = "get_room_list" // 获取房间列表

	// 比赛操作
	MsgBid         MessageType = "bid"          // 叫牌
	MsgChooseTrump MessageType = "choose_trump" // 选主牌花色
	MsgPlayCard    MessageType = "play_card"    // 出牌
	MsgNextHand    MessageType = "next_hand"    // 提前进入下一局

	// 其他
	MsgGetLeaderboard MessageType = "get_leaderboard" // 获取排行榜
	MsgChat           MessageType = "chat"            // 聊天消息
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected     MessageType = "connected"      // 连接成功
	MsgReconnected   MessageType = "reconnected"    // 重连成功
	MsgPong          MessageType = "pong"           // 心跳 pong
	MsgPlayerOffline MessageType = "player_offline" // 玩家掉线通知
	MsgPlayerOnline  MessageType = "player_online"  // 玩家上线通知

	// 房间相关
	MsgRoomCreated    MessageType = "room_created"     // 房间创建成功
	MsgRoomJoined     MessageType = "room_joined"      // 加入房间成功
	MsgPlayerJoined   MessageType = "player_joined"    // 其他玩家加入
	MsgPlayerLeft     MessageType = "player_left"      // 玩家离开
	MsgRoomUpdate     MessageType = "room_update"      // 房间快照更新
	MsgRoomListResult MessageType = "room_list_result" // 房间列表结果

	// 比赛流程
	MsgMatchStarted MessageType = "match_started" // 比赛开始
	MsgGameState    MessageType = "game_state"    // 按观看者过滤的比赛状态快照
	MsgMatchOver    MessageType = "match_over"    // 比赛结束

	// 其他
	MsgLeaderboardResult MessageType = "leaderboard_result" // 排行榜结果
	MsgChatRelay         MessageType = "chat_relay"         // 聊天转发

	// 错误
	MsgError MessageType = "error" // 错误消息
)

package client

import (
	"errors"
	"time"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// 封装各类请求的便捷方法

// Ping 发送心跳
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// CreateRoom 创建房间，昵称和口令可为空
func (c *Client) CreateRoom(name, password string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{
		Name:     name,
		Password: password,
	}))
}

// JoinRoom 加入房间
func (c *Client) JoinRoom(roomCode, name, password string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{
		RoomCode: roomCode,
		Name:     name,
		Password: password,
	}))
}

// LeaveRoom 离开房间
func (c *Client) LeaveRoom() error {
	c.RoomCode = ""
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgLeaveRoom, nil))
}

// AddBot 请求添加机器人（房主）
func (c *Client) AddBot() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgAddBot, nil))
}

// StartMatch 开始比赛（房主）
func (c *Client) StartMatch() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgStartMatch, nil))
}

// GetRoomList 获取大厅房间列表
func (c *Client) GetRoomList() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgGetRoomList, nil))
}

// Bid 叫墩
func (c *Client) Bid(value int) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgBid, protocol.BidPayload{
		Value: value,
	}))
}

// ChooseTrump 亮主
func (c *Client) ChooseTrump(suit string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgChooseTrump, protocol.ChooseTrumpPayload{
		Suit: suit,
	}))
}

// PlayCard 出牌
func (c *Client) PlayCard(card string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPlayCard, protocol.PlayCardPayload{
		Card: card,
	}))
}

// NextHand 请求提前进入下一局
func (c *Client) NextHand() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgNextHand, nil))
}

// GetLeaderboard 获取排行榜
func (c *Client) GetLeaderboard(limit int) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgGetLeaderboard, protocol.GetLeaderboardPayload{
		Limit: limit,
	}))
}

// Chat 发送聊天
func (c *Client) Chat(text string) error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgChat, protocol.ChatPayload{
		Text: text,
	}))
}

// Reconnect 手动发送重连请求
func (c *Client) Reconnect() error {
	if c.ReconnectToken == "" || c.PlayerID == "" {
		return errors.New("no reconnect token")
	}
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgReconnect, protocol.ReconnectPayload{
		Token:    c.ReconnectToken,
		PlayerID: c.PlayerID,
	}))
}

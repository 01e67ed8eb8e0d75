package server

import (
	"strings"
	"time"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// 单条聊天最大长度，按字符数截断，避免切断多字节字符
const maxChatLength = 200

// handleChat 转发房间内聊天
func (h *Handler) handleChat(client *Client, msg *protocol.Message) {
	payload, err := protocol.ParsePayload[protocol.ChatPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		return
	}
	text = truncateChat(text)

	if !h.server.chatLimiter.AllowChat(client.ID) {
		client.SendMessage(protocol.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "发言太快了，休息一下"))
		return
	}

	room := h.server.roomManager.GetRoom(client.GetRoom())
	if room == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeNotInRoom))
		return
	}

	room.Broadcast(protocol.MustNewMessage(protocol.MsgChatRelay, protocol.ChatRelayPayload{
		PlayerID:   client.ID,
		PlayerName: client.Name,
		Text:       text,
		Timestamp:  time.Now().UnixMilli(),
	}))
}

func truncateChat(text string) string {
	if r := []rune(text); len(r) > maxChatLength {
		return string(r[:maxChatLength])
	}
	return text
}

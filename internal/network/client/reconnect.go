package client

import (
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mpopesco/whist-go/internal/logger"
	"github.com/mpopesco/whist-go/internal/network/protocol"
)

const (
	// 最大重连次数
	maxReconnectAttempts = 5
	// 首次重连间隔，之后指数退避
	reconnectInterval = 2 * time.Second
)

// OnReconnecting 重连进度回调
type OnReconnectingFunc func(attempt, max int)

// tryReconnect 断线后带指数退避的自动重连
func (c *Client) tryReconnect() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			log.Printf("[PANIC] tryReconnect panic recovered: %v", r)
			c.reconnecting.Store(false)
		}
	}()

	if c.reconnecting.Load() {
		return
	}
	c.reconnecting.Store(true)

	backoff := reconnectInterval

	for c.reconnectCount < maxReconnectAttempts {
		c.reconnectCount++
		if c.OnReconnecting != nil {
			c.OnReconnecting(c.reconnectCount, maxReconnectAttempts)
		}

		time.Sleep(backoff)

		// 退避上限 30 秒
		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}

		dialer := websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		}

		conn, _, err := dialer.Dial(c.ServerURL, nil)
		if err != nil {
			continue
		}

		// 重置状态
		c.mu.Lock()
		c.conn = conn
		c.closed = false
		c.send = make(chan []byte, 256)
		c.receive = make(chan *protocol.Message, 256)
		c.done = make(chan struct{})
		c.mu.Unlock()

		go c.readPump()
		go c.writePump()

		// 发送重连请求
		time.Sleep(100 * time.Millisecond)
		if err := c.Reconnect(); err != nil {
			_ = c.conn.Close()
			continue
		}

		// 重连成功与否由 MsgReconnected 消息告知
		return
	}

	c.reconnecting.Store(false)
	c.Close()
	if c.OnClose != nil {
		c.OnClose()
	}
}

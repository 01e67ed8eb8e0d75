package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/mpopesco/whist-go/internal/network/protocol"
)

// MockClient 基于 testify 的连接替身，用于需要断言调用的测试
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string   { return m.Called().String(0) }
func (m *MockClient) GetName() string { return m.Called().String(0) }
func (m *MockClient) GetRoom() string { return m.Called().String(0) }
func (m *MockClient) SetRoom(roomCode string) {
	m.Called(roomCode)
}
func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}
func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 只记录收到消息的连接替身，绝大多数测试用这个就够了
type SimpleClient struct {
	ID   string
	Name string

	mu       sync.Mutex
	room     string
	messages []*protocol.Message
	closed   bool
}

func NewSimpleClient(id, name string) *SimpleClient {
	return &SimpleClient{ID: id, Name: name}
}

func (c *SimpleClient) GetID() string   { return c.ID }
func (c *SimpleClient) GetName() string { return c.Name }

func (c *SimpleClient) GetRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *SimpleClient) SetRoom(roomCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = roomCode
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Messages 收到的全部消息快照
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// MessagesOfType 按类型过滤收到的消息
func (c *SimpleClient) MessagesOfType(t protocol.MessageType) []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*protocol.Message
	for _, m := range c.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// LastMessage 最后一条消息，没有则返回 nil
func (c *SimpleClient) LastMessage() *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}

// Reset 清空已记录的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

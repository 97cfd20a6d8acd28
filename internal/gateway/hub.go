package gateway

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
	"github.com/ahmetcancakir06/nodelab-case/internal/metrics"
	"github.com/ahmetcancakir06/nodelab-case/internal/service"
)

// Hub 维护全部活跃连接和房间成员关系，并作为投递 worker 的
// 实时通知出口。一个用户可以有多个并发连接
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
	byUser  map[int64]map[*Client]bool
	rooms   map[string]map[*Client]bool

	presence service.Presence
	messages message.Repository
	log      *zap.SugaredLogger
}

// NewHub 创建连接中心
func NewHub(presence service.Presence, messages message.Repository, log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		byUser:   make(map[int64]map[*Client]bool),
		rooms:    make(map[string]map[*Client]bool),
		presence: presence,
		messages: messages,
		log:      log,
	}
}

// Register 接入一个已通过鉴权的连接：记入在线集合并向其他人广播上线
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]bool)
	}
	h.byUser[c.UserID][c] = true
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	h.log.Infow("user connected", "session", c.ID, "username", c.Username)

	// 在线集合不可用不影响连接本身
	if err := h.presence.Add(context.Background(), c.UserID); err != nil {
		h.log.Errorw("failed to add user to online set", "user", c.UserID, "error", err)
	}

	h.broadcast(c, "user_online", map[string]interface{}{
		"userId":   c.UserID,
		"username": c.Username,
	})
}

// Unregister 断开连接。该用户最后一个连接断开时才移出在线集合并广播下线
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	if set := h.byUser[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	for roomID := range c.rooms {
		if members := h.rooms[roomID]; members != nil {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	lastConn := h.byUser[c.UserID] == nil
	close(c.send)
	h.mu.Unlock()

	metrics.WSConnections.Dec()
	h.log.Infow("user disconnected", "session", c.ID, "username", c.Username)

	if !lastConn {
		return
	}
	if err := h.presence.Remove(context.Background(), c.UserID); err != nil {
		h.log.Errorw("failed to remove user from online set", "user", c.UserID, "error", err)
	}
	h.broadcast(nil, "user_offline", map[string]interface{}{
		"userId":    c.UserID,
		"username":  c.Username,
		"timestamp": nowStamp(),
	})
}

// IsConnected 该用户是否至少有一个活跃连接
func (h *Hub) IsConnected(userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser[userID]) > 0
}

// Emit 向某个用户的全部连接推送事件
func (h *Hub) Emit(userID int64, event string, payload interface{}) {
	body := encodeEvent(event, payload)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.byUser[userID] {
		h.push(c, body)
	}
}

// broadcast 向除 except 外的所有连接推送事件
func (h *Hub) broadcast(except *Client, event string, payload interface{}) {
	body := encodeEvent(event, payload)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c == except {
			continue
		}
		h.push(c, body)
	}
}

// broadcastRoom 向房间成员推送事件，except 可为空
func (h *Hub) broadcastRoom(roomID string, except *Client, event string, payload interface{}) {
	body := encodeEvent(event, payload)
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		if c == except {
			continue
		}
		h.push(c, body)
	}
}

// push 发送缓冲满时丢弃该条，不阻塞其他连接。调用方需持有锁
func (h *Hub) push(c *Client, body []byte) {
	if body == nil {
		return
	}
	select {
	case c.send <- body:
	default:
		h.log.Warnw("client send buffer full, dropping event", "session", c.ID, "username", c.Username)
	}
}

// handleJoinRoom 加入会话房间。forced 加入在连接生命周期内
// 对同一会话只生效一次，用来挡住客户端的重复自动重连
func (h *Hub) handleJoinRoom(c *Client, d joinRoomData) {
	if d.ConversationID == "" {
		return
	}

	if d.Forced {
		if c.forcedJoins[d.ConversationID] {
			h.log.Debugw("forced join already attempted, skipping", "session", c.ID, "room", d.ConversationID)
			return
		}
		c.forcedJoins[d.ConversationID] = true
		h.joinRoom(c, d.ConversationID)
		return
	}

	h.joinRoom(c, d.ConversationID)
	h.log.Infow("user joined conversation", "username", c.Username, "room", d.ConversationID)
	h.broadcastRoom(d.ConversationID, c, "user_joined", map[string]interface{}{
		"username":       c.Username,
		"conversationId": d.ConversationID,
		"timestamp":      nowStamp(),
	})
}

func (h *Hub) joinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	c.rooms[roomID] = true
}

// handleSendMessage 实时聊天路径：直接落库（绕过队列）并广播给房间
func (h *Hub) handleSendMessage(ctx context.Context, c *Client, d sendMessageData) {
	if d.RoomID == "" || d.Content == "" || d.SenderID == 0 {
		h.log.Warnw("send_message missing fields", "session", c.ID)
		return
	}

	m := &message.Message{
		SenderID:       d.SenderID,
		ReceiverID:     d.ReceiverID,
		Content:        d.Content,
		ConversationID: d.RoomID,
	}
	if err := h.messages.Create(ctx, m); err != nil {
		h.log.Errorw("failed to persist live message", "session", c.ID, "error", err)
		return
	}
	metrics.LiveMessagesSent.Inc()

	h.broadcastRoom(d.RoomID, nil, "message_received", map[string]interface{}{
		"messageId": m.ID,
		"senderId":  m.SenderID,
		"content":   m.Content,
		"timestamp": m.CreatedAt,
	})
}

// handleTyping 输入指示，发给房间里除自己外的成员
func (h *Hub) handleTyping(c *Client, d typingData) {
	if d.RoomID == "" {
		return
	}
	h.broadcastRoom(d.RoomID, c, "user_typing", map[string]interface{}{
		"username":  c.Username,
		"roomId":    d.RoomID,
		"timestamp": nowStamp(),
	})
}

// handleReadMessage 已读回执是全局广播，不限定房间
func (h *Hub) handleReadMessage(c *Client, d readMessageData) {
	if d.MessageID == 0 {
		return
	}
	h.broadcast(nil, "message_read", map[string]interface{}{
		"messageId": d.MessageID,
	})
	h.log.Debugw("message read", "messageId", d.MessageID, "by", c.Username)
}

package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = int64(4096)
)

// Client 一条已鉴权的 websocket 连接
type Client struct {
	ID       string
	UserID   int64
	Username string

	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	// forcedJoins 记录本连接上已经 forced 加入过的会话
	forcedJoins map[string]bool
	rooms       map[string]bool
}

// NewClient 创建连接会话
func NewClient(hub *Hub, conn *websocket.Conn, userID int64, username string) *Client {
	return &Client{
		ID:          uuid.NewString(),
		UserID:      userID,
		Username:    username,
		conn:        conn,
		send:        make(chan []byte, 256),
		hub:         hub,
		forcedJoins: make(map[string]bool),
		rooms:       make(map[string]bool),
	}
}

// ReadPump 读取并分发入站事件，连接断开时注销自己
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warnw("websocket read error", "session", c.ID, "error", err)
			}
			return
		}
		c.dispatch(raw)
	}
}

// dispatch 每条入站事件同步派发给对应的处理函数
func (c *Client) dispatch(raw []byte) {
	var ev inboundEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.hub.log.Warnw("invalid event payload", "session", c.ID, "error", err)
		return
	}

	switch ev.Event {
	case "join_room":
		var d joinRoomData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return
		}
		c.hub.handleJoinRoom(c, d)
	case "send_message":
		var d sendMessageData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return
		}
		c.hub.handleSendMessage(context.Background(), c, d)
	case "typing":
		var d typingData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return
		}
		c.hub.handleTyping(c, d)
	case "read_message":
		var d readMessageData
		if err := json.Unmarshal(ev.Data, &d); err != nil {
			return
		}
		c.hub.handleReadMessage(c, d)
	default:
		c.hub.log.Debugw("unknown event", "session", c.ID, "event", ev.Event)
	}
}

// WritePump 把出站事件写到连接上，并维持 ping/pong 心跳
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case body, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

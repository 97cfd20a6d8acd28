package gateway

import (
	"encoding/json"
	"time"
)

// 客户端到服务端的事件信封 {event, data}
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinRoomData struct {
	ConversationID string `json:"conversationId"`
	Forced         bool   `json:"forced"`
}

type sendMessageData struct {
	RoomID     string `json:"roomId"`
	Content    string `json:"content"`
	SenderID   int64  `json:"senderId"`
	ReceiverID int64  `json:"receiverId"`
}

type typingData struct {
	RoomID string `json:"roomId"`
}

type readMessageData struct {
	MessageID int64 `json:"messageId"`
}

// 服务端到客户端的事件信封
type outboundEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

func encodeEvent(event string, data interface{}) []byte {
	b, err := json.Marshal(outboundEvent{Event: event, Data: data})
	if err != nil {
		return nil
	}
	return b
}

func nowStamp() time.Time {
	return time.Now().UTC()
}

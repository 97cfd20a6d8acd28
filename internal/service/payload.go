package service

// QueuedMessage 队列消息载荷。字段名与线上格式保持一致：
// {sender, receiver, content, conversationId?, _id}
type QueuedMessage struct {
	ID             int64  `json:"_id"`
	SenderID       int64  `json:"sender"`
	ReceiverID     int64  `json:"receiver"`
	Content        string `json:"content"`
	ConversationID string `json:"conversationId,omitempty"`
}

package message

import (
	"context"
	"time"
)

// Message 聊天消息模型。创建后不可变，只有已读标记会被更新
type Message struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	SenderID       int64     `gorm:"index;not null" json:"senderId"`
	ReceiverID     int64     `gorm:"index;not null" json:"receiverId"`
	Content        string    `gorm:"size:2048;not null" json:"content"`
	ConversationID string    `gorm:"size:128;index;not null" json:"conversationId"`
	IsRead         bool      `gorm:"default:false" json:"isRead"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

// Repository 消息仓储接口
type Repository interface {
	Create(ctx context.Context, m *Message) error
	// LastBetween 返回两个用户之间（不区分方向）最近的一条消息，不存在时返回 (nil, nil)
	LastBetween(ctx context.Context, a, b int64) (*Message, error)
	// ListConversation 返回两个用户之间的全部消息，按创建时间升序
	ListConversation(ctx context.Context, a, b int64) ([]*Message, error)
	// MarkRead 将 sender 发给 receiver 的未读消息全部置为已读
	MarkRead(ctx context.Context, receiverID, senderID int64) error
}

package automessage

import (
	"context"
	"time"
)

// AutoMessage 计划自动消息。生命周期：pending -> queued -> sent
type AutoMessage struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	SenderID   int64     `gorm:"index;not null" json:"senderId"`
	ReceiverID int64     `gorm:"index;not null" json:"receiverId"`
	Content    string    `gorm:"size:2048;not null" json:"content"`
	SendDate   time.Time `gorm:"index;not null" json:"sendDate"`
	IsQueued   bool      `gorm:"default:false" json:"isQueued"`
	IsSent     bool      `gorm:"default:false" json:"isSent"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Repository 自动消息仓储接口
type Repository interface {
	Create(ctx context.Context, m *AutoMessage) error
	GetByID(ctx context.Context, id int64) (*AutoMessage, error)
	// FindDue 返回 send_date <= now 且未入队未发送的记录
	FindDue(ctx context.Context, now time.Time) ([]*AutoMessage, error)
	MarkQueued(ctx context.Context, id int64) error
	MarkSent(ctx context.Context, id int64) error
}

package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
)

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息仓储
func NewMessageRepository(db *gorm.DB) message.Repository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *messageRepo) LastBetween(ctx context.Context, a, b int64) (*message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *messageRepo) ListConversation(ctx context.Context, a, b int64) ([]*message.Message, error) {
	var list []*message.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, receiverID, senderID int64) error {
	return r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ?", receiverID, senderID, false).
		Update("is_read", true).Error
}

package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/automessage"
)

type autoMessageRepo struct {
	db *gorm.DB
}

// NewAutoMessageRepository 创建自动消息仓储
func NewAutoMessageRepository(db *gorm.DB) automessage.Repository {
	return &autoMessageRepo{db: db}
}

func (r *autoMessageRepo) Create(ctx context.Context, m *automessage.AutoMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *autoMessageRepo) GetByID(ctx context.Context, id int64) (*automessage.AutoMessage, error) {
	var m automessage.AutoMessage
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *autoMessageRepo) FindDue(ctx context.Context, now time.Time) ([]*automessage.AutoMessage, error) {
	var list []*automessage.AutoMessage
	err := r.db.WithContext(ctx).
		Where("send_date <= ? AND is_queued = ? AND is_sent = ?", now, false, false).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *autoMessageRepo) MarkQueued(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&automessage.AutoMessage{}).
		Where("id = ?", id).
		Update("is_queued", true).Error
}

func (r *autoMessageRepo) MarkSent(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&automessage.AutoMessage{}).
		Where("id = ?", id).
		Update("is_sent", true).Error
}

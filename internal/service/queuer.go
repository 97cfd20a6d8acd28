package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/broker"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/automessage"
	"github.com/ahmetcancakir06/nodelab-case/internal/metrics"
)

// Queuer 周期性任务：把到期且未入队的自动消息发布到主队列。
// 发布成功后才置 isQueued；置位失败的记录下轮会被重新选中，
// 造成重复发布，这是接受的至少一次语义
type Queuer struct {
	autos  automessage.Repository
	broker broker.Broker
	now    func() time.Time
	log    *zap.SugaredLogger
}

// NewQueuer 创建入队任务
func NewQueuer(autos automessage.Repository, b broker.Broker, log *zap.SugaredLogger) *Queuer {
	return &Queuer{
		autos:  autos,
		broker: b,
		now:    time.Now,
		log:    log,
	}
}

// Run 执行一轮入队，返回成功发布的条数
func (q *Queuer) Run(ctx context.Context) (int, error) {
	due, err := q.autos.FindDue(ctx, q.now())
	if err != nil {
		return 0, fmt.Errorf("find due auto messages: %w", err)
	}
	if len(due) == 0 {
		q.log.Debugw("no messages to queue")
		return 0, nil
	}

	queued := 0
	for _, m := range due {
		body, err := json.Marshal(QueuedMessage{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Content:    m.Content,
		})
		if err != nil {
			q.log.Errorw("failed to marshal auto message", "id", m.ID, "error", err)
			continue
		}

		if err := q.broker.Publish(ctx, broker.MainQueue, body, 0); err != nil {
			q.log.Errorw("failed to publish auto message", "id", m.ID, "error", err)
			continue
		}
		queued++
		metrics.AutoMessagesQueued.Inc()

		if err := q.autos.MarkQueued(ctx, m.ID); err != nil {
			// 记录保持未入队状态，下轮重选会导致重复发布
			q.log.Errorw("failed to mark auto message queued", "id", m.ID, "error", err)
			continue
		}
		q.log.Infow("queued auto message", "id", m.ID)
	}
	return queued, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ahmetcancakir06/nodelab-case/internal/broker"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/automessage"
	"github.com/ahmetcancakir06/nodelab-case/internal/datamodels/message"
	"github.com/ahmetcancakir06/nodelab-case/internal/metrics"
)

// Notifier 实时通知出口，由网关实现。接收者不在线不算错误
type Notifier interface {
	IsConnected(userID int64) bool
	Emit(userID int64, event string, payload interface{})
}

// DeliveryWorker 主队列消费者：落库消息、置自动消息为已发送、
// 通知在线接收者。失败走重试队列，重试耗尽后永久丢弃
type DeliveryWorker struct {
	broker   broker.Broker
	messages message.Repository
	autos    automessage.Repository
	resolver *ConversationResolver
	notifier Notifier
	maxRetry int
	log      *zap.SugaredLogger
}

// NewDeliveryWorker 创建投递 worker。notifier 可以为空（纯落库模式）
func NewDeliveryWorker(
	b broker.Broker,
	messages message.Repository,
	autos automessage.Repository,
	resolver *ConversationResolver,
	notifier Notifier,
	maxRetry int,
	log *zap.SugaredLogger,
) *DeliveryWorker {
	return &DeliveryWorker{
		broker:   b,
		messages: messages,
		autos:    autos,
		resolver: resolver,
		notifier: notifier,
		maxRetry: maxRetry,
		log:      log,
	}
}

// Start 阻塞消费主队列直到 ctx 取消或通道关闭
func (w *DeliveryWorker) Start(ctx context.Context) error {
	w.log.Infow("delivery worker started", "queue", broker.MainQueue)
	return w.broker.Consume(ctx, broker.MainQueue, w.Handle)
}

// Handle 处理一条队列消息。消息在确定去向（成功、已提交重试、
// 永久丢弃）之前不会被确认
func (w *DeliveryWorker) Handle(ctx context.Context, d *broker.Delivery) {
	var qm QueuedMessage
	if err := json.Unmarshal(d.Body, &qm); err != nil {
		// 格式错误无法通过重试修复，直接丢弃
		w.log.Errorw("failed to parse queued message, dropping", "error", err)
		metrics.DeliveriesDropped.Inc()
		if err := d.Ack(); err != nil {
			w.log.Errorw("failed to ack malformed message", "error", err)
		}
		return
	}

	if err := w.deliver(ctx, &qm); err != nil {
		w.retryOrDrop(ctx, d, &qm, err)
		return
	}

	if err := d.Ack(); err != nil {
		w.log.Errorw("failed to ack delivered message", "id", qm.ID, "error", err)
	}
}

func (w *DeliveryWorker) deliver(ctx context.Context, qm *QueuedMessage) error {
	convID := qm.ConversationID
	if convID == "" {
		var err error
		convID, err = w.resolver.Resolve(ctx, qm.SenderID, qm.ReceiverID)
		if err != nil {
			return fmt.Errorf("resolve conversation: %w", err)
		}
	}

	m := &message.Message{
		SenderID:       qm.SenderID,
		ReceiverID:     qm.ReceiverID,
		Content:        qm.Content,
		ConversationID: convID,
	}
	if err := w.messages.Create(ctx, m); err != nil {
		return fmt.Errorf("persist message: %w", err)
	}

	if err := w.autos.MarkSent(ctx, qm.ID); err != nil {
		return fmt.Errorf("mark auto message sent: %w", err)
	}

	// 接收者在线才推送；不在线时消息已经落库，下次拉取可见
	if w.notifier != nil && w.notifier.IsConnected(qm.ReceiverID) {
		w.notifier.Emit(qm.ReceiverID, "message_received", map[string]interface{}{
			"messageId":      m.ID,
			"senderId":       m.SenderID,
			"content":        m.Content,
			"conversationId": m.ConversationID,
			"timestamp":      m.CreatedAt,
		})
	}

	metrics.MessagesDelivered.Inc()
	w.log.Infow("consumed and delivered message", "messageId", m.ID, "autoMessageId", qm.ID)
	return nil
}

// retryOrDrop 失败处理：未超过上限时把同样的载荷发到重试队列并确认原消息；
// 超过上限时记录永久失败并确认（自动消息停留在未发送的终态）。
// 重试发布本身失败时不确认，等 broker 重投
func (w *DeliveryWorker) retryOrDrop(ctx context.Context, d *broker.Delivery, qm *QueuedMessage, cause error) {
	if d.RetryCount >= w.maxRetry {
		w.log.Warnw("message permanently failed, dropping",
			"id", qm.ID, "retries", d.RetryCount, "error", cause)
		metrics.DeliveriesDead.Inc()
		if err := d.Ack(); err != nil {
			w.log.Errorw("failed to ack dead message", "id", qm.ID, "error", err)
		}
		return
	}

	if err := w.broker.Publish(ctx, broker.RetryQueue, d.Body, d.RetryCount+1); err != nil {
		w.log.Errorw("failed to push message to retry queue, leaving unacked",
			"id", qm.ID, "error", err)
		return
	}
	metrics.DeliveriesRetried.Inc()
	w.log.Warnw("message failed, pushed to retry queue",
		"id", qm.ID, "retry", d.RetryCount, "error", cause)
	if err := d.Ack(); err != nil {
		w.log.Errorw("failed to ack retried message", "id", qm.ID, "error", err)
	}
}

package broker

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ahmetcancakir06/nodelab-case/internal/config"
)

// RabbitBroker 基于 RabbitMQ 的 Broker 实现
type RabbitBroker struct {
	ch *amqp.Channel
}

// NewRabbitBroker 打开 channel 并声明主队列和重试队列。
// 重试队列带固定 TTL，到期消息经默认交换机死信回主队列
func NewRabbitBroker(conn *amqp.Connection, cfg *config.PipelineConfig) (*RabbitBroker, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err = ch.QueueDeclare(MainQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", MainQueue, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": MainQueue,
		"x-message-ttl":             int32(cfg.RetryTTLMillis),
	}
	if _, err = ch.QueueDeclare(RetryQueue, true, false, false, false, args); err != nil {
		return nil, fmt.Errorf("declare %s: %w", RetryQueue, err)
	}

	return &RabbitBroker{ch: ch}, nil
}

func (b *RabbitBroker) Publish(ctx context.Context, queue string, body []byte, retryCount int) error {
	return b.ch.PublishWithContext(
		ctx,
		"",
		queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{RetryCountHeader: int32(retryCount)},
			Body:         body,
		},
	)
}

func (b *RabbitBroker) Consume(ctx context.Context, queue string, handler func(ctx context.Context, d *Delivery)) error {
	// 手动确认模式（auto-ack=false）
	msgs, err := b.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return fmt.Errorf("consume %s: channel closed", queue)
			}
			d := &Delivery{
				Body:       m.Body,
				RetryCount: retryCountFrom(m.Headers),
				ackFn: func() error {
					return m.Ack(false)
				},
			}
			handler(ctx, d)
		}
	}
}

// Close 关闭底层 channel
func (b *RabbitBroker) Close() error {
	return b.ch.Close()
}

// retryCountFrom 读取消息头里的重试计数，缺失或类型异常时按 0 处理
func retryCountFrom(headers amqp.Table) int {
	v, ok := headers[RetryCountHeader]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

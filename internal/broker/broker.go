package broker

import "context"

// 投递管道使用的两个队列。重试队列消息到期后死信回主队列，实现延迟重试
const (
	MainQueue  = "message_sending_queue"
	RetryQueue = "message_retry_queue"

	// RetryCountHeader 消息头中的重试计数
	RetryCountHeader = "x-retry-count"
)

// Delivery 一条待处理的队列消息
type Delivery struct {
	Body       []byte
	RetryCount int

	ackFn func() error
}

// NewDelivery 构造一条消息，ack 为空时 Ack 是空操作（测试用）
func NewDelivery(body []byte, retryCount int, ack func() error) *Delivery {
	return &Delivery{Body: body, RetryCount: retryCount, ackFn: ack}
}

// Ack 确认消息，将其从队列中移除
func (d *Delivery) Ack() error {
	if d.ackFn == nil {
		return nil
	}
	return d.ackFn()
}

// Broker 持久化队列抽象
type Broker interface {
	// Publish 以持久化方式发布消息，retryCount 写入消息头
	Publish(ctx context.Context, queue string, body []byte, retryCount int) error
	// Consume 阻塞消费队列，每条消息调用一次 handler；手动确认语义，
	// handler 返回前必须决定消息去向（Ack 或交由重发）
	Consume(ctx context.Context, queue string, handler func(ctx context.Context, d *Delivery)) error
}

package mq

import (
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ahmetcancakir06/nodelab-case/internal/config"
)

var (
	conn *amqp.Connection
	once sync.Once
)

const (
	dialAttempts = 5
	dialBackoff  = 5 * time.Second
)

// Init 初始化 RabbitMQ 连接，带有限次数的重连
func Init(cfg *config.RabbitMQConfig) *amqp.Connection {
	once.Do(func() {
		var err error
		for i := 0; i < dialAttempts; i++ {
			conn, err = amqp.Dial(cfg.URL)
			if err == nil {
				return
			}
			log.Printf("rabbitmq connection failed (attempt %d): %v", i+1, err)
			time.Sleep(dialBackoff)
		}
		log.Fatalf("failed to connect rabbitmq after %d attempts: %v", dialAttempts, err)
	})
	return conn
}

// Conn 获取 MQ 连接
func Conn() *amqp.Connection {
	return conn
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ahmetcancakir06/nodelab-case/internal/broker"
	"github.com/ahmetcancakir06/nodelab-case/internal/config"
	"github.com/ahmetcancakir06/nodelab-case/internal/infra/mq"
	"github.com/ahmetcancakir06/nodelab-case/internal/logger"
	"github.com/ahmetcancakir06/nodelab-case/internal/repository/mysql"
	"github.com/ahmetcancakir06/nodelab-case/internal/service"
)

// 独立的投递 worker 进程：只消费主队列落库，不带实时推送。
// 接收者下次拉取历史时可见
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.Init(os.Getenv("DEBUG") != "")
	defer zlog.Sync()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	userRepo := mysql.NewUserRepository(db)
	messageRepo := mysql.NewMessageRepository(db)
	autoRepo := mysql.NewAutoMessageRepository(db)

	b, err := broker.NewRabbitBroker(mqConn, &cfg.Pipeline)
	if err != nil {
		log.Fatalf("failed to set up broker: %v", err)
	}
	resolver := service.NewConversationResolver(messageRepo, userRepo)
	worker := service.NewDeliveryWorker(b, messageRepo, autoRepo, resolver, nil, cfg.Pipeline.MaxRetry, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("delivery worker started, waiting for messages...")
	if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("delivery worker stopped: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"

	"github.com/ahmetcancakir06/nodelab-case/internal/broker"
	"github.com/ahmetcancakir06/nodelab-case/internal/config"
	"github.com/ahmetcancakir06/nodelab-case/internal/gateway"
	"github.com/ahmetcancakir06/nodelab-case/internal/infra/mq"
	"github.com/ahmetcancakir06/nodelab-case/internal/infra/redis"
	"github.com/ahmetcancakir06/nodelab-case/internal/logger"
	"github.com/ahmetcancakir06/nodelab-case/internal/repository/mysql"
	"github.com/ahmetcancakir06/nodelab-case/internal/server"
	"github.com/ahmetcancakir06/nodelab-case/internal/service"
)

func main() {
	// .env 存在时加载，不存在不算错误
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.Init(os.Getenv("DEBUG") != "")
	defer zlog.Sync()

	// 基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储
	userRepo := mysql.NewUserRepository(db)
	messageRepo := mysql.NewMessageRepository(db)
	autoRepo := mysql.NewAutoMessageRepository(db)

	// 管道组件
	b, err := broker.NewRabbitBroker(mqConn, &cfg.Pipeline)
	if err != nil {
		log.Fatalf("failed to set up broker: %v", err)
	}
	presence := service.NewPresenceRegistry(redisClient)
	resolver := service.NewConversationResolver(messageRepo, userRepo)

	hub := gateway.NewHub(presence, messageRepo, zlog)
	worker := service.NewDeliveryWorker(b, messageRepo, autoRepo, resolver, hub, cfg.Pipeline.MaxRetry, zlog)
	planner := service.NewPlanner(presence, userRepo, autoRepo, cfg.Pipeline.SendDelay(), nil, zlog)
	queuer := service.NewQueuer(autoRepo, b, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := worker.Start(ctx); err != nil && ctx.Err() == nil {
			zlog.Errorw("delivery worker stopped", "error", err)
		}
	}()

	sched := service.NewScheduler(zlog)
	sched.Every(ctx, "plan_auto_messages", cfg.Pipeline.PlanEvery, func(ctx context.Context) error {
		_, err := planner.Run(ctx)
		return err
	})
	sched.Every(ctx, "queue_auto_messages", cfg.Pipeline.QueueEvery, func(ctx context.Context) error {
		_, err := queuer.Run(ctx)
		return err
	})

	// HTTP + websocket
	userSvc := service.NewUserService(userRepo, presence, &cfg.JWT, zlog)
	msgSvc := service.NewMessageService(messageRepo, zlog)
	wsHandler := gateway.NewHandler(hub, userRepo, &cfg.JWT, zlog)

	app := iris.New()
	server.RegisterRoutes(app, &server.Deps{
		Cfg:     cfg,
		UserSvc: userSvc,
		MsgSvc:  msgSvc,
		WS:      wsHandler,
	})

	addr := cfg.Server.Addr()
	log.Printf("server listening on %s", addr)
	if err := app.Run(iris.Addr(addr)); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

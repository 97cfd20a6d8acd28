package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler 简单的周期任务调度器。同一任务不会并发执行：
// 上一轮未结束时跳过本轮。取消 ctx 只停止后续调度，不打断在途任务
type Scheduler struct {
	log *zap.SugaredLogger
}

// NewScheduler 创建调度器
func NewScheduler(log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{log: log}
}

// Every 每隔 interval 执行一次 fn，任务错误只记日志
func (s *Scheduler) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var running int32
		for {
			select {
			case <-ctx.Done():
				s.log.Infow("scheduled task stopped", "task", name)
				return
			case <-ticker.C:
				if !atomic.CompareAndSwapInt32(&running, 0, 1) {
					s.log.Warnw("previous run still in progress, skipping tick", "task", name)
					continue
				}
				go func() {
					defer atomic.StoreInt32(&running, 0)
					if err := fn(ctx); err != nil {
						s.log.Errorw("scheduled task failed", "task", name, "error", err)
					}
				}()
			}
		}
	}()
}

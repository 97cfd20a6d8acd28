package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
)

var (
	logger *zap.SugaredLogger
	once   sync.Once
)

// Init 初始化全局日志实例
func Init(debug bool) *zap.SugaredLogger {
	once.Do(func() {
		var (
			l   *zap.Logger
			err error
		)
		if debug {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
		logger = l.Sugar()
	})
	return logger
}

// L 获取全局日志实例，未初始化时退化为空操作日志
func L() *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

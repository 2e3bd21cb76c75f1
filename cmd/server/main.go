package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/deps"
	"clipforge/internal/queue"
	"clipforge/internal/server"
	"clipforge/internal/service"
	"clipforge/internal/storage"
	"clipforge/log"
)

func main() {
	_ = godotenv.Load()

	log.InitLogger()
	defer log.GetLogger().Sync()

	var err error
	if !config.LoadConfig() {
		return
	}

	if err = config.CheckConfig(); err != nil {
		log.GetLogger().Error("加载配置失败 Failed to load config", zap.Error(err))
		return
	}

	storage.InitDB()

	// zombie cleanup: runs left "processing" by a previous process
	if count, err := storage.MarkStaleRuns(); err != nil {
		log.GetLogger().Warn("Failed to mark stale runs", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale runs as failed", zap.Int64("count", count))
	}

	if err = deps.CheckDependency(); err != nil {
		log.GetLogger().Error("依赖环境准备失败 Dependency check failed", zap.Error(err))
		return
	}

	if config.Conf.Queue.Enabled {
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		defer q.Close()
		go func() {
			if err := queue.StartWorker(q, service.NewService()); err != nil {
				log.GetLogger().Error("队列工作进程退出 Queue worker exited", zap.Error(err))
			}
		}()
	}
	if err = server.StartBackend(); err != nil {
		log.GetLogger().Error("后端服务启动失败 Failed to start backend", zap.Error(err))
		os.Exit(1)
	}
}

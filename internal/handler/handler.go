package handler

import (
	"clipforge/config"
	"clipforge/internal/queue"
	"clipforge/internal/service"
	"clipforge/internal/taskrunner"
)

type Handler struct {
	Service *service.Service
	Runner  *taskrunner.Runner
	// Queue is set when Redis-backed processing is enabled; submissions then
	// go through Asynq instead of the in-process runner.
	Queue *queue.Queue
}

func NewHandler() *Handler {
	svc := service.NewService()
	h := &Handler{
		Service: svc,
		Runner:  taskrunner.New(svc, taskrunner.NewBroadcaster(), taskrunner.DefaultConfig()),
	}
	if config.Conf.Queue.Enabled {
		h.Queue = queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
	}
	return h
}

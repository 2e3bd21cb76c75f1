// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"clipforge/internal/service"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
)

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	service *service.Service
}

// NewTaskHandlers creates a new TaskHandlers instance
func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleHighlightTask processes one queued highlight run
func (h *TaskHandlers) HandleHighlightTask(ctx context.Context, t *asynq.Task) error {
	var payload HighlightPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing highlight task",
		zap.String("task_id", payload.TaskID),
		zap.String("video", payload.VideoPath),
		zap.Bool("autonomous", payload.Autonomous))

	req := service.ProcessRequest{
		VideoPath:   payload.VideoPath,
		Count:       payload.Count,
		TaskID:      payload.TaskID,
		GameContext: payload.GameContext,
		Reencode:    payload.Reencode,
	}

	var err error
	if payload.Autonomous {
		_, err = h.service.RunAutonomous(ctx, req)
	} else {
		_, err = h.service.ProcessVideo(ctx, req)
	}
	if err != nil {
		if run, getErr := storage.GetRun(payload.TaskID); getErr == nil && run.Status != types.RunStatusFailed {
			run.Status = types.RunStatusFailed
			run.FailReason = err.Error()
			_ = storage.SaveRun(run)
		}
		return err
	}

	log.GetLogger().Info("[Queue] Highlight task completed",
		zap.String("task_id", payload.TaskID))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeHighlightTask, h.HandleHighlightTask)
}

// StartWorker starts the Asynq worker with registered handlers
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}

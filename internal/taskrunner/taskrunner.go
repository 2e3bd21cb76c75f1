package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"clipforge/internal/service"
	"clipforge/internal/storage"
	"clipforge/internal/types"
	"clipforge/log"
)

const (
	defaultQueueSize   = 128
	defaultConcurrency = 1
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a desktop-friendly default config. Highlight runs
// are GPU/API heavy, so one at a time by default.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// HighlightTaskPayload contains highlight run enqueue data.
type HighlightTaskPayload struct {
	TaskID      string `json:"task_id"`
	VideoPath   string `json:"video_path"`
	Count       int    `json:"count"`
	GameContext string `json:"game_context,omitempty"`
	Autonomous  bool   `json:"autonomous"`
	Reencode    bool   `json:"reencode"`
}

// Runner executes queued highlight runs with in-memory workers.
type Runner struct {
	service     *service.Service
	broadcaster *Broadcaster
	config      Config

	queue  chan HighlightTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, broadcaster *Broadcaster, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}
	if broadcaster == nil {
		broadcaster = NewBroadcaster()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service:     svc,
		broadcaster: broadcaster,
		config:      cfg,
		queue:       make(chan HighlightTaskPayload, cfg.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// Broadcaster exposes the progress fan-out for websocket subscribers.
func (r *Runner) Broadcaster() *Broadcaster {
	return r.broadcaster
}

// SubmitHighlightTask queues a highlight run.
func (r *Runner) SubmitHighlightTask(payload HighlightTaskPayload) error {
	if payload.VideoPath == "" {
		return errors.New("highlight task video path is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("task_id", payload.TaskID),
			zap.Bool("autonomous", payload.Autonomous))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.processTask(workerID, payload)
		}
	}
}

func (r *Runner) processTask(workerID int, payload HighlightTaskPayload) {
	r.markProcessing(payload)

	req := service.ProcessRequest{
		VideoPath:   payload.VideoPath,
		Count:       payload.Count,
		TaskID:      payload.TaskID,
		GameContext: payload.GameContext,
		Reencode:    payload.Reencode,
		Progress: func(stage string, percent int) {
			r.broadcaster.Publish(ProgressEvent{
				TaskID:  payload.TaskID,
				Stage:   stage,
				Percent: percent,
			})
		},
	}

	var err error
	if payload.Autonomous {
		_, err = r.service.RunAutonomous(r.ctx, req)
	} else {
		_, err = r.service.ProcessVideo(r.ctx, req)
	}

	if err != nil {
		r.markFailed(payload.TaskID, err)
		r.broadcaster.Publish(ProgressEvent{TaskID: payload.TaskID, Stage: "failed", Percent: 100})
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", payload.TaskID),
			zap.Error(err))
		return
	}

	r.broadcaster.Publish(ProgressEvent{TaskID: payload.TaskID, Stage: "done", Percent: 100})
	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", payload.TaskID))
}

func (r *Runner) markProcessing(payload HighlightTaskPayload) {
	if storage.DB == nil {
		return
	}
	_ = storage.SaveRun(&types.HighlightRun{
		TaskId:     payload.TaskID,
		VideoPath:  payload.VideoPath,
		Status:     types.RunStatusProcessing,
		Autonomous: payload.Autonomous,
	})
}

func (r *Runner) markFailed(taskID string, taskErr error) {
	if taskID == "" || storage.DB == nil {
		return
	}

	run, err := storage.GetRun(taskID)
	if err != nil || run == nil {
		return
	}
	if run.Status == types.RunStatusFailed {
		// the pipeline already recorded the failure with its own reason
		return
	}
	run.Status = types.RunStatusFailed
	run.FailReason = taskErr.Error()
	_ = storage.SaveRun(run)
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}

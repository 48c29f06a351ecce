package scheduler

import (
	"context"
	"fmt"

	"salescrm_backend/internal/analytics/digest"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	digest    *digest.Service
	log       *logger.Logger
}

// NewWorker builds the asynq server plus the cron scheduler that enqueues
// the daily digest.
func NewWorker(cfg config.SchedulerConfig, digestSvc *digest.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queue: 1,
		},
	})

	cronScheduler := asynq.NewScheduler(opt, nil)
	cronSpec := cfg.GetDigestCronSpec()
	if cronSpec != "" {
		task, err := NewDailyDigestTask(DailyDigestPayload{})
		if err != nil {
			return nil, err
		}
		if _, err := cronScheduler.Register(cronSpec, task, asynq.Queue(queue)); err != nil {
			return nil, fmt.Errorf("register digest cron: %w", err)
		}
	}

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		scheduler: cronScheduler,
		mux:       mux,
		digest:    digestSvc,
		log:       log,
	}

	mux.HandleFunc(TaskDailyDigest, w.handleDailyDigest)

	return w, nil
}

func (w *Worker) handleDailyDigest(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDailyDigestPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("running daily digest", "requested", payload.Requested)
	return w.digest.Run(ctx)
}

// Run starts the cron scheduler and the task server and blocks until ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	if err := w.scheduler.Start(); err != nil {
		w.log.Error("digest cron failed to start", "error", err)
	}

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

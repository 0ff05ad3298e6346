package scheduler

import (
	"context"
	"fmt"
	"time"

	"leadchat_backend/platform/config"
	"leadchat_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues the maintenance tasks on their cron specs.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	queue := asynq.Queue(queueName(cfg))

	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{cfg.GetWorkloadRefreshSpec(), NewWorkloadRefreshTask()},
		{cfg.GetSessionSweepSpec(), NewSessionSweepTask()},
	}
	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		if _, err := s.Register(e.spec, e.task, queue); err != nil {
			return nil, fmt.Errorf("register %s: %w", e.task.Type(), err)
		}
		log.Info("periodic task registered", "task", e.task.Type(), "spec", e.spec)
	}

	return &Periodic{scheduler: s, log: log}, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}

package scheduler

import (
	"context"
	"time"

	"leadchat_backend/platform/logger"
)

// LocalJob runs a maintenance function on a fixed interval inside the
// current process. The API uses it when no Redis is configured for asynq.
type LocalJob struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error
	log      *logger.Logger
}

func NewLocalJob(name string, interval time.Duration, fn func(ctx context.Context) error, log *logger.Logger) *LocalJob {
	return &LocalJob{name: name, interval: interval, fn: fn, log: log}
}

func (j *LocalJob) Run(ctx context.Context) {
	if j == nil || j.fn == nil || j.interval <= 0 {
		return
	}

	j.runOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *LocalJob) runOnce(ctx context.Context) {
	if err := j.fn(ctx); err != nil && ctx.Err() == nil {
		j.log.Warn("local job failed", "job", j.name, "error", err)
	}
}

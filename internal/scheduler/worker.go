package scheduler

import (
	"context"
	"fmt"

	"leadchat_backend/internal/experts/service"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SessionSweeper abandons idle chat sessions.
type SessionSweeper interface {
	AbandonIdle(ctx context.Context) (int64, error)
}

// WorkloadRefresher rebuilds the cached expert workload snapshot.
type WorkloadRefresher interface {
	RefreshWorkload(ctx context.Context) (int, error)
}

// HandoffRecorder persists matched experts for a session.
type HandoffRecorder interface {
	RecordHandoffs(ctx context.Context, sessionID uuid.UUID, serviceName string, handoffs []service.Handoff) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	sweeper  SessionSweeper
	workload WorkloadRefresher
	handoffs HandoffRecorder
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		log:    log,
	}
	w.registerHandlers()

	return w, nil
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TaskExpertHandoff, w.handleExpertHandoff)
	w.mux.HandleFunc(TaskWorkloadRefresh, w.handleWorkloadRefresh)
	w.mux.HandleFunc(TaskSessionSweep, w.handleSessionSweep)
}

func (w *Worker) SetSessionSweeper(s SessionSweeper)       { w.sweeper = s }
func (w *Worker) SetWorkloadRefresher(r WorkloadRefresher) { w.workload = r }
func (w *Worker) SetHandoffRecorder(r HandoffRecorder)     { w.handoffs = r }

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleExpertHandoff(ctx context.Context, task *asynq.Task) error {
	if w.handoffs == nil {
		return nil
	}

	payload, err := ParseExpertHandoffPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	sessionID, err := uuid.Parse(payload.SessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	handoffs := make([]service.Handoff, 0, len(payload.Experts))
	for _, e := range payload.Experts {
		expertID, err := uuid.Parse(e.ExpertID)
		if err != nil {
			w.log.Warn("skipping handoff with invalid expert id", "expertId", e.ExpertID, "sessionId", sessionID)
			continue
		}
		handoffs = append(handoffs, service.Handoff{ExpertID: expertID, Rank: e.Rank, Score: e.Score})
	}
	if len(handoffs) == 0 {
		return nil
	}

	return w.handoffs.RecordHandoffs(ctx, sessionID, payload.Service, handoffs)
}

func (w *Worker) handleWorkloadRefresh(ctx context.Context, _ *asynq.Task) error {
	if w.workload == nil {
		return nil
	}
	_, err := w.workload.RefreshWorkload(ctx)
	return err
}

func (w *Worker) handleSessionSweep(ctx context.Context, _ *asynq.Task) error {
	if w.sweeper == nil {
		return nil
	}
	_, err := w.sweeper.AbandonIdle(ctx)
	return err
}

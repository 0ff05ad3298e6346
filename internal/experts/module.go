// Package experts provides the expert roster bounded context: ranking,
// workload caching and handoff scheduling.
package experts

import (
	"context"

	"leadchat_backend/internal/events"
	"leadchat_backend/internal/experts/handler"
	"leadchat_backend/internal/experts/repository"
	"leadchat_backend/internal/experts/service"
	"leadchat_backend/internal/experts/workload"
	apphttp "leadchat_backend/internal/http"
	"leadchat_backend/internal/scheduler"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const workloadCacheKey = "leadchat:experts:workload"

// NewService builds the expert service over Postgres and, when rdb is set,
// the shared Redis workload cache.
func NewService(pool *pgxpool.Pool, rdb redis.UniversalClient, cfg *config.Config, log *logger.Logger) *service.Service {
	repo := repository.New(pool)

	var cache *workload.Cache
	if rdb != nil {
		cache = workload.NewCache(rdb, workloadCacheKey, cfg.GetWorkloadCacheTTL())
	}
	return service.New(repo, workload.NewLoader(cache, repo, log), cfg, log)
}

// Module is the experts bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	service  *service.Service
	handoffs scheduler.HandoffScheduler
	log      *logger.Logger
}

// NewModule creates the experts module. rdb may be nil, in which case the
// workload snapshot is read from Postgres on every miss.
func NewModule(pool *pgxpool.Pool, rdb redis.UniversalClient, eventBus events.Bus, cfg *config.Config, log *logger.Logger) *Module {
	svc := NewService(pool, rdb, cfg, log)

	m := &Module{
		handler: handler.New(svc),
		service: svc,
		log:     log,
	}

	eventBus.Subscribe(events.ExpertsMatched{}.EventName(), events.HandlerFunc(m.onExpertsMatched))

	return m
}

// SetHandoffScheduler routes handoffs through the asynq queue. Without one,
// handoffs are recorded in-process.
func (m *Module) SetHandoffScheduler(s scheduler.HandoffScheduler) {
	m.handoffs = s
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "experts"
}

// Service returns the experts service; it satisfies ports.ExpertDirectory.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the admin ranking route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/sessions"))
}

func (m *Module) onExpertsMatched(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ExpertsMatched)
	if !ok {
		return nil
	}

	if m.handoffs != nil {
		payload := scheduler.ExpertHandoffPayload{
			SessionID: e.SessionID.String(),
			Service:   e.Service,
			Experts:   make([]scheduler.HandoffExpert, len(e.Experts)),
		}
		for i, x := range e.Experts {
			payload.Experts[i] = scheduler.HandoffExpert{ExpertID: x.ExpertID.String(), Rank: x.Rank, Score: x.Score}
		}
		if err := m.handoffs.ScheduleExpertHandoff(ctx, payload); err != nil {
			m.log.Error("failed to schedule expert handoff", "error", err, "sessionId", e.SessionID)
			return err
		}
		return nil
	}

	handoffs := make([]service.Handoff, len(e.Experts))
	for i, x := range e.Experts {
		handoffs[i] = service.Handoff{ExpertID: x.ExpertID, Rank: x.Rank, Score: x.Score}
	}
	return m.service.RecordHandoffs(ctx, e.SessionID, e.Service, handoffs)
}

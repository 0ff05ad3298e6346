// Package conversation provides the lead-qualification chat bounded context.
// This file defines the module that wires the engine, service and routes.
package conversation

import (
	"leadchat_backend/internal/conversation/ambiguity"
	"leadchat_backend/internal/conversation/engine"
	"leadchat_backend/internal/conversation/handler"
	"leadchat_backend/internal/conversation/repository"
	"leadchat_backend/internal/conversation/service"
	"leadchat_backend/internal/conversation/transport"
	"leadchat_backend/internal/events"
	apphttp "leadchat_backend/internal/http"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/guard"
	"leadchat_backend/platform/logger"
	"leadchat_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repo
}

// NewModule creates the conversation module. quota may be nil to disable the
// per-session message quota.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, quota *guard.Quota, cfg *config.Config, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidators(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	eng := engine.New(log, engine.WithSelector(ambiguity.RandomSelector{}))
	svc := service.New(repo, eng, eventBus, quota, cfg, log)

	return &Module{
		handler: handler.New(svc, val, log),
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// Service returns the conversation service for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the session repository.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the public chat routes and the session admin routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	chat := ctx.V1.Group("/chat")
	if ctx.PublicRateLimiter != nil {
		chat.Use(ctx.PublicRateLimiter.RateLimit())
	}
	m.handler.RegisterPublicRoutes(chat)
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/sessions"))
}

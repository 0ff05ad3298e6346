// Package service exposes the expert roster to the conversation flow and
// ranks experts for administrative review.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/internal/experts/repository"
	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/logger"
)

const defaultMatchLimit = 5

// Store is the persistence the service needs.
type Store interface {
	ListActive(ctx context.Context) ([]ranking.Candidate, error)
	Upsert(ctx context.Context, c ranking.Candidate) (uuid.UUID, error)
	WorkloadCounts(ctx context.Context, now time.Time) (ranking.Snapshot, error)
	RecordHandoff(ctx context.Context, h repository.Handoff) error
}

// WorkloadLoader serves cached workload snapshots.
type WorkloadLoader interface {
	Load(ctx context.Context) (ranking.Snapshot, error)
	Refresh(ctx context.Context) (int, error)
	Invalidate(ctx context.Context) error
}

// SessionReader loads a chat session by id.
type SessionReader interface {
	GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error)
}

type Service struct {
	store    Store
	workload WorkloadLoader
	sessions SessionReader
	limit    int
	log      *logger.Logger
}

func New(store Store, workload WorkloadLoader, cfg config.ExpertsConfig, log *logger.Logger) *Service {
	limit := cfg.GetExpertMatchLimit()
	if limit < 1 {
		limit = defaultMatchLimit
	}
	return &Service{store: store, workload: workload, limit: limit, log: log}
}

// SetSessionReader wires the conversation session lookup (breaks the
// conversation <-> experts construction cycle).
func (s *Service) SetSessionReader(r SessionReader) { s.sessions = r }

// Roster returns the active experts.
func (s *Service) Roster(ctx context.Context) ([]ranking.Candidate, error) {
	return s.store.ListActive(ctx)
}

// Workload returns the cached upcoming-booking counts.
func (s *Service) Workload(ctx context.Context) (ranking.Snapshot, error) {
	return s.workload.Load(ctx)
}

// RefreshWorkload recomputes and caches the workload snapshot.
func (s *Service) RefreshWorkload(ctx context.Context) (int, error) {
	n, err := s.workload.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("expert workload refreshed", "experts", n)
	return n, nil
}

// MatchForSession ranks the roster for a session's recommended service and
// returns at most the configured number of experts.
func (s *Service) MatchForSession(ctx context.Context, sessionID uuid.UUID) ([]ranking.Match, error) {
	if s.sessions == nil {
		return nil, apperr.Internal("session lookup not configured")
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.RecommendedService == "" {
		return nil, apperr.Conflict("session has no recommended service yet")
	}

	roster, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	workload, err := s.workload.Load(ctx)
	if err != nil {
		s.log.Warn("expert workload unavailable, ranking without penalty", "error", err)
		workload = nil
	}

	matches := ranking.Rank(roster, ranking.TargetFor(session), workload)
	if len(matches) > s.limit {
		matches = matches[:s.limit]
	}
	return matches, nil
}

// Handoff is one ranked expert to be recorded for a session.
type Handoff struct {
	ExpertID uuid.UUID
	Rank     int
	Score    float64
}

// RecordHandoffs stores the top-ranked experts for a session. Records beyond
// the configured limit are ignored.
func (s *Service) RecordHandoffs(ctx context.Context, sessionID uuid.UUID, service string, handoffs []Handoff) error {
	if len(handoffs) > s.limit {
		handoffs = handoffs[:s.limit]
	}
	for _, h := range handoffs {
		err := s.store.RecordHandoff(ctx, repository.Handoff{
			SessionID: sessionID,
			ExpertID:  h.ExpertID,
			Rank:      h.Rank,
			Score:     h.Score,
			Service:   service,
		})
		if err != nil {
			return err
		}
	}
	s.log.Info("expert handoffs recorded", "sessionId", sessionID, "count", len(handoffs))
	return nil
}

// Import upserts a roster, returning the number of experts written.
func (s *Service) Import(ctx context.Context, roster []ranking.Candidate) (int, error) {
	defer s.invalidateWorkload(ctx)
	for i, c := range roster {
		if c.Email == "" || c.Name == "" {
			return i, apperr.Validation("expert name and email are required")
		}
		for _, svc := range c.Services {
			if !domain.IsService(svc) {
				return i, apperr.Validation("unknown service " + svc + " for " + c.Email)
			}
		}
		if _, err := s.store.Upsert(ctx, c); err != nil {
			return i, err
		}
	}
	return len(roster), nil
}

// invalidateWorkload drops the cached snapshot after roster changes, since
// deactivated experts leave it.
func (s *Service) invalidateWorkload(ctx context.Context) {
	if err := s.workload.Invalidate(ctx); err != nil {
		s.log.Warn("workload cache invalidation failed", "error", err)
	}
}

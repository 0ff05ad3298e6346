package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/conversation/repository"
	"leadchat_backend/internal/events"
	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/phone"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Override is an administrative correction of session facts.
type Override struct {
	Facts              []domain.Fact
	RecommendedService *string
}

// GetSession returns a session by id.
func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	return s.repo.GetSession(ctx, id)
}

// ListSessions returns a page of sessions and the total match count.
func (s *Service) ListSessions(ctx context.Context, params repository.ListSessionsParams) ([]domain.Session, int, error) {
	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}
	if params.Limit > maxListLimit {
		params.Limit = maxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	return s.repo.ListSessions(ctx, params)
}

// OverrideFacts overwrites facts regardless of first-write-wins and
// recomputes score, recommendation and step.
func (s *Service) OverrideFacts(ctx context.Context, id uuid.UUID, o Override) (domain.Session, error) {
	facts, err := s.normalizeOverride(o)
	if err != nil {
		return domain.Session{}, err
	}

	for attempt := 1; ; attempt++ {
		session, err := s.repo.GetSession(ctx, id)
		if err != nil {
			return domain.Session{}, err
		}

		for _, f := range facts {
			session.Override(f)
		}
		if o.RecommendedService != nil {
			session.RecommendedService = *o.RecommendedService
		}

		out, err := s.engine.Refresh(&session)
		if err != nil {
			return domain.Session{}, err
		}
		out.Session.UpdatedAt = s.now()

		saved, err := s.repo.SaveSession(ctx, out.Session)
		if err == nil {
			s.log.Info("session facts overridden", "sessionId", id, "facts", len(facts))
			s.publishDerived(ctx, saved, out)
			return saved, nil
		}
		if !apperr.Is(err, apperr.KindConflict) || attempt == maxSaveAttempts {
			return domain.Session{}, err
		}
	}
}

// CompleteSession closes an active session.
func (s *Service) CompleteSession(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	for attempt := 1; ; attempt++ {
		session, err := s.repo.GetSession(ctx, id)
		if err != nil {
			return domain.Session{}, err
		}
		if session.Status != domain.StatusActive {
			return domain.Session{}, apperr.Conflict(sessionClosedMessage)
		}

		session.Status = domain.StatusCompleted
		session.UpdatedAt = s.now()

		saved, err := s.repo.SaveSession(ctx, session)
		if err == nil {
			s.eventBus.Publish(ctx, events.SessionCompleted{BaseEvent: events.NewBaseEvent(), SessionID: saved.ID})
			return saved, nil
		}
		if !apperr.Is(err, apperr.KindConflict) || attempt == maxSaveAttempts {
			return domain.Session{}, err
		}
	}
}

func (s *Service) normalizeOverride(o Override) ([]domain.Fact, error) {
	if len(o.Facts) == 0 && o.RecommendedService == nil {
		return nil, apperr.Validation("no facts to override")
	}
	if o.RecommendedService != nil && !domain.IsService(*o.RecommendedService) {
		return nil, apperr.Validation(fmt.Sprintf("unknown service %q", *o.RecommendedService))
	}

	facts := make([]domain.Fact, 0, len(o.Facts))
	for _, f := range o.Facts {
		if f.Field != domain.FieldPhone {
			facts = append(facts, f)
			continue
		}
		normalized, ok := phone.NormalizeE164(f.Value, s.cfg.GetPhoneRegion())
		if !ok {
			return nil, apperr.Validation("invalid phone number")
		}
		facts = append(facts, domain.Fact{Field: domain.FieldPhone, Value: normalized})
	}
	return facts, nil
}


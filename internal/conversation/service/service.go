// Package service is the caller side of the conversation engine: it loads
// and persists sessions, enforces quotas, chooses reply text and publishes
// domain events. All I/O happens outside the engine's session lock.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/ambiguity"
	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/conversation/engine"
	"leadchat_backend/internal/conversation/ports"
	"leadchat_backend/internal/conversation/prompts"
	"leadchat_backend/internal/conversation/repository"
	"leadchat_backend/internal/events"
	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/guard"
	"leadchat_backend/platform/logger"
	"leadchat_backend/platform/metrics"
	"leadchat_backend/platform/sanitize"
)

const (
	maxUtteranceRunes = 2000
	maxSaveAttempts   = 3
	transcriptWindow  = 20

	sessionClosedMessage = "session is closed"
	quotaExceededMessage = "message quota exceeded for this session"
	emptyMessageMessage  = "message is empty"
)

// Service handles chat messages and administrative session operations.
type Service struct {
	repo      repository.Repository
	engine    *engine.Engine
	eventBus  events.Bus
	quota     *guard.Quota
	cfg       config.ConversationConfig
	log       *logger.Logger
	metrics   *metrics.Metrics
	experts   ports.ExpertDirectory
	responder ports.Responder
	now       func() time.Time
}

// New creates a new conversation service.
func New(repo repository.Repository, eng *engine.Engine, eventBus events.Bus, quota *guard.Quota, cfg config.ConversationConfig, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		engine:   eng,
		eventBus: eventBus,
		quota:    quota,
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetExpertDirectory wires the roster source used for expert ranking.
func (s *Service) SetExpertDirectory(d ports.ExpertDirectory) { s.experts = d }

// SetResponder wires an optional reply generator.
func (s *Service) SetResponder(r ports.Responder) { s.responder = r }

// SetMetrics wires the Prometheus collectors.
func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// MessageResult is the outcome of one inbound utterance.
type MessageResult struct {
	Session       domain.Session
	Reply         string
	Clarification *ambiguity.Verdict
	Fact          *domain.Fact
	Experts       []ranking.Match
	Created       bool
}

// HandleMessage processes content for sessionID, creating a session when
// sessionID is nil.
func (s *Service) HandleMessage(ctx context.Context, sessionID *uuid.UUID, content string) (MessageResult, error) {
	content = sanitize.Utterance(content, maxUtteranceRunes)
	if content == "" {
		return MessageResult{}, apperr.Validation(emptyMessageMessage)
	}

	session, created, err := s.loadOrCreate(ctx, sessionID)
	if err != nil {
		return MessageResult{}, err
	}
	log := s.log.WithSessionID(session.ID.String())

	allowed, _, err := s.quota.Allow(ctx, session.ID.String())
	if err != nil {
		return MessageResult{}, err
	}
	if !allowed {
		log.RateLimitExceeded(session.ID.String(), "chat.messages")
		return MessageResult{}, apperr.TooManyRequests(quotaExceededMessage)
	}

	if err := s.appendMessage(ctx, session.ID, domain.RoleUser, content); err != nil {
		return MessageResult{}, err
	}

	var (
		out   engine.Output
		saved domain.Session
		reply string
	)
	for attempt := 1; ; attempt++ {
		roster, workload := s.loadRoster(ctx, session)

		working := session.Clone()
		out, err = s.engine.Process(ctx, engine.Input{
			Session:   &working,
			Utterance: content,
			Roster:    roster,
			Workload:  workload,
		})
		if err != nil {
			return MessageResult{}, err
		}

		reply = s.chooseReply(ctx, out)
		if !out.Ambiguous() {
			out.Session.LastBotQuestion = reply
		}

		saved, err = s.repo.SaveSession(ctx, out.Session)
		if err == nil {
			break
		}
		if !apperr.Is(err, apperr.KindConflict) || attempt == maxSaveAttempts {
			return MessageResult{}, err
		}
		log.Warn("session save conflict, retrying", "attempt", attempt)
		if session, err = s.repo.GetSession(ctx, session.ID); err != nil {
			return MessageResult{}, err
		}
		if session.Status != domain.StatusActive {
			return MessageResult{}, apperr.Conflict(sessionClosedMessage)
		}
	}

	if err := s.appendMessage(ctx, saved.ID, domain.RoleAssistant, reply); err != nil {
		return MessageResult{}, err
	}

	s.publishOutcome(ctx, saved, out, created)

	result := MessageResult{
		Session: saved,
		Reply:   reply,
		Fact:    out.Fact,
		Experts: out.Experts,
		Created: created,
	}
	if out.Ambiguous() {
		result.Clarification = out.Verdict
	}
	return result, nil
}

// Transcript returns the most recent messages of a session.
func (s *Service) Transcript(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Utterance, error) {
	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID, limit)
}

// AbandonIdle marks sessions idle longer than the configured timeout as
// abandoned.
func (s *Service) AbandonIdle(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.GetSessionIdleTimeout())
	n, err := s.repo.MarkAbandoned(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("abandoned idle sessions", "count", n, "idleBefore", cutoff)
	}
	return n, nil
}

func (s *Service) loadOrCreate(ctx context.Context, sessionID *uuid.UUID) (domain.Session, bool, error) {
	if sessionID != nil {
		session, err := s.repo.GetSession(ctx, *sessionID)
		if err != nil {
			return domain.Session{}, false, err
		}
		if session.Status != domain.StatusActive {
			return domain.Session{}, false, apperr.Conflict(sessionClosedMessage)
		}
		return session, false, nil
	}

	session := domain.NewSession(uuid.New(), s.now())
	session.LastBotQuestion = prompts.QuestionFor(session)
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return domain.Session{}, false, err
	}
	return session, true, nil
}

// loadRoster fetches experts once a session has a recommendation or is close
// to one. Lookup failures degrade to no ranking.
func (s *Service) loadRoster(ctx context.Context, session domain.Session) ([]ranking.Candidate, ranking.Snapshot) {
	if s.experts == nil || session.Phase.Ordinal() > domain.PhasePRDGeneration.Ordinal() {
		return nil, nil
	}
	if session.RecommendedService == "" && session.Step.Ordinal() < domain.StepQualificationTimeline.Ordinal() {
		return nil, nil
	}

	roster, err := s.experts.Roster(ctx)
	if err != nil {
		s.log.Warn("expert roster unavailable", "error", err)
		return nil, nil
	}
	workload, err := s.experts.Workload(ctx)
	if err != nil {
		s.log.Warn("expert workload unavailable, ranking without penalty", "error", err)
		workload = nil
	}
	return roster, workload
}

func (s *Service) chooseReply(ctx context.Context, out engine.Output) string {
	if out.Ambiguous() {
		return out.Clarification
	}
	if s.responder == nil {
		return prompts.QuestionFor(out.Session)
	}

	transcript, err := s.repo.ListMessages(ctx, out.Session.ID, transcriptWindow)
	if err != nil {
		s.log.Warn("transcript unavailable, using scripted question", "error", err)
		return prompts.QuestionFor(out.Session)
	}
	reply, err := s.responder.Reply(ctx, out.Session, transcript)
	if err != nil || reply == "" {
		s.log.Warn("responder failed, using scripted question", "error", err)
		return prompts.QuestionFor(out.Session)
	}
	return reply
}

func (s *Service) appendMessage(ctx context.Context, sessionID uuid.UUID, role domain.Role, content string) error {
	return s.repo.AppendMessage(ctx, domain.Utterance{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	})
}

func (s *Service) publishOutcome(ctx context.Context, session domain.Session, out engine.Output, created bool) {
	if created {
		s.eventBus.Publish(ctx, events.SessionStarted{BaseEvent: events.NewBaseEvent(), SessionID: session.ID})
	}

	if out.Ambiguous() {
		s.metrics.Utterance(metrics.OutcomeClarified)
		s.metrics.Clarification(string(out.Verdict.Reason))
		s.eventBus.Publish(ctx, events.ClarificationRequested{
			BaseEvent: events.NewBaseEvent(),
			SessionID: session.ID,
			Reason:    string(out.Verdict.Reason),
		})
		return
	}

	if out.Fact != nil {
		s.metrics.Utterance(metrics.OutcomeExtracted)
		s.eventBus.Publish(ctx, events.FactExtracted{
			BaseEvent: events.NewBaseEvent(),
			SessionID: session.ID,
			Field:     string(out.Fact.Field),
			Value:     session.Get(out.Fact.Field),
		})
	} else {
		s.metrics.Utterance(metrics.OutcomeNoop)
	}

	s.publishDerived(ctx, session, out)
}

// publishDerived emits events for changes that follow from the facts.
func (s *Service) publishDerived(ctx context.Context, session domain.Session, out engine.Output) {
	if score, ok := session.Score(); ok && out.ScoreChanged {
		s.eventBus.Publish(ctx, events.LeadScored{BaseEvent: events.NewBaseEvent(), SessionID: session.ID, Score: score})
	}
	if out.Recommended {
		s.metrics.Recommendation(session.RecommendedService)
		s.eventBus.Publish(ctx, events.ServiceRecommended{
			BaseEvent: events.NewBaseEvent(),
			SessionID: session.ID,
			Service:   session.RecommendedService,
		})
	}
	if out.PhaseChanged {
		s.eventBus.Publish(ctx, events.PhaseChanged{
			BaseEvent: events.NewBaseEvent(),
			SessionID: session.ID,
			From:      string(out.PreviousPhase),
			To:        string(session.Phase),
		})
	}
	if out.PhaseChanged && session.Phase == domain.PhaseExpertMatching && len(out.Experts) > 0 {
		matched := make([]events.MatchedExpert, len(out.Experts))
		for i, m := range out.Experts {
			s.metrics.MatchScore(m.Score)
			matched[i] = events.MatchedExpert{ExpertID: m.Candidate.ID, Rank: i + 1, Score: m.Score}
		}
		s.eventBus.Publish(ctx, events.ExpertsMatched{
			BaseEvent: events.NewBaseEvent(),
			SessionID: session.ID,
			Service:   session.RecommendedService,
			Experts:   matched,
		})
	}
}

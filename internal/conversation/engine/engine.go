// Package engine runs one utterance through the conversation pipeline:
// ambiguity check, fact extraction, scoring, service recommendation, step
// resolution and, when a roster is supplied, expert ranking.
//
// The engine performs no I/O. Callers load and persist sessions and
// generate reply text outside of Process.
//
// A lock keyed by session ID serializes the pipeline per session, which
// protects callers that share one *domain.Session. It does not merge work
// done on separate copies: the conversation service gives each request its
// own clone, and concurrent turns on one session are reconciled by the
// repository's version check and the service's reload-and-retry.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/ambiguity"
	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/conversation/extraction"
	"leadchat_backend/internal/conversation/phase"
	"leadchat_backend/internal/conversation/recommend"
	"leadchat_backend/internal/conversation/scoring"
	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/logger"
)

// Input is one utterance addressed to a session. Session is mutated in
// place under the session lock; Roster and Workload are optional.
type Input struct {
	Session   *domain.Session
	Utterance string
	Roster    []ranking.Candidate
	Workload  ranking.Snapshot
}

// Output reports what Process changed. Session is a snapshot taken after
// the pipeline ran.
type Output struct {
	Session       domain.Session
	Verdict       *ambiguity.Verdict
	Clarification string
	Fact          *domain.Fact
	StepChanged   bool
	PhaseChanged  bool
	PreviousPhase domain.Phase
	ScoreChanged  bool
	Recommended   bool
	Experts       []ranking.Match
}

// Ambiguous reports whether the utterance was answered with a clarification.
func (o Output) Ambiguous() bool {
	return o.Verdict != nil && o.Verdict.Ambiguous
}

// Engine is safe for concurrent use. Calls for the same session serialize;
// calls for different sessions run in parallel.
type Engine struct {
	selector ambiguity.Selector
	locks    *sessionLocks
	now      func() time.Time
	log      *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSelector sets the clarification template selector.
func WithSelector(sel ambiguity.Selector) Option {
	return func(e *Engine) { e.selector = sel }
}

// WithClock overrides the time source used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		selector: ambiguity.RandomSelector{},
		locks:    newSessionLocks(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	return e
}

// Process applies in.Utterance to in.Session.
func (e *Engine) Process(ctx context.Context, in Input) (Output, error) {
	if err := ctx.Err(); err != nil {
		return Output{}, err
	}
	if err := validate(in); err != nil {
		return Output{}, err
	}

	utterance := strings.TrimSpace(in.Utterance)
	unlock := e.locks.lock(in.Session.ID)
	out := e.apply(in.Session, utterance)
	unlock()

	if out.Ambiguous() {
		e.log.ClarificationIssued(out.Session.ID.String(), string(out.Verdict.Reason))
		return out, nil
	}
	if out.Fact == nil {
		e.log.ExtractionNoop(out.Session.ID.String(), string(out.Session.Step))
	}

	if out.Session.RecommendedService == "" || len(in.Roster) == 0 {
		return out, nil
	}

	out.Experts = ranking.Rank(in.Roster, ranking.TargetFor(out.Session), in.Workload)
	if len(out.Experts) > 0 {
		e.advanceToMatching(in.Session, &out)
	}
	return out, nil
}

func validate(in Input) error {
	if in.Session == nil {
		return apperr.Validation("session is required").WithOp("engine.Process")
	}
	if in.Session.ID == uuid.Nil {
		return apperr.Validation("session id is required").WithOp("engine.Process")
	}
	if strings.TrimSpace(in.Utterance) == "" {
		return apperr.Validation("utterance is required").WithOp("engine.Process")
	}
	if in.Session.Status != "" && in.Session.Status != domain.StatusActive {
		return apperr.Validation("session is not active").WithOp("engine.Process")
	}
	return nil
}

// apply runs the locked part of the pipeline.
func (e *Engine) apply(s *domain.Session, utterance string) Output {
	now := e.now()
	s.LastMessageAt = now
	out := Output{PreviousPhase: s.Phase}

	if v := ambiguity.Classify(utterance, s.LastBotQuestion); v.Ambiguous {
		out.Verdict = &v
		out.Clarification = ambiguity.Clarify(e.selector, v.Reason)
		out.Session = s.Clone()
		return out
	}
	verdict := ambiguity.Clear
	out.Verdict = &verdict

	if f, ok := extraction.Extract(utterance, *s); ok && s.Apply(f) {
		out.Fact = &f
		s.UpdatedAt = now
	}

	derive(s, &out)
	out.Session = s.Clone()
	return out
}

// Refresh re-derives score, recommendation and step for s without an
// utterance. Used after administrative fact changes.
func (e *Engine) Refresh(s *domain.Session) (Output, error) {
	if s == nil || s.ID == uuid.Nil {
		return Output{}, apperr.Validation("session is required").WithOp("engine.Refresh")
	}

	unlock := e.locks.lock(s.ID)
	defer unlock()

	out := Output{PreviousPhase: s.Phase}
	derive(s, &out)
	out.Session = s.Clone()
	return out, nil
}

// derive recomputes everything that follows from the facts.
func derive(s *domain.Session, out *Output) {
	if score, ok := scoring.Score(*s); ok {
		if old, set := s.Score(); !set || old != score {
			s.LeadScore = &score
			out.ScoreChanged = true
		}
	}

	if service, ok := recommend.Recommend(*s); ok {
		s.RecommendedService = service
		out.Recommended = true
	}

	if step := phase.Resolve(*s); step != s.Step {
		s.Step = step
		out.StepChanged = true
	}
	if domain.ResolverOwnsPhase(s.Phase) {
		if p := s.Step.Phase(); p != s.Phase {
			s.Phase = p
			out.PhaseChanged = true
		}
	}
}

// advanceToMatching moves a fully qualified session on to expert matching.
func (e *Engine) advanceToMatching(s *domain.Session, out *Output) {
	unlock := e.locks.lock(s.ID)
	defer unlock()

	if s.Phase != domain.PhasePRDGeneration {
		return
	}
	s.Phase = domain.PhaseExpertMatching
	out.Session.Phase = domain.PhaseExpertMatching
	out.PhaseChanged = out.PreviousPhase != domain.PhaseExpertMatching
}

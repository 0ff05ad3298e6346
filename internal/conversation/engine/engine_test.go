package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadchat_backend/internal/conversation/ambiguity"
	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/logger"
)

var fixedNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newEngine() *Engine {
	return New(logger.Nop(),
		WithSelector(ambiguity.FixedSelector{}),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func newSession() *domain.Session {
	s := domain.NewSession(uuid.New(), fixedNow.Add(-time.Hour))
	return &s
}

func qualifiedSession() *domain.Session {
	s := newSession()
	s.Client = domain.ClientFacts{Name: "Ana", Email: "ana@example.com", Company: "Acme"}
	s.Business = domain.BusinessFacts{
		Challenges: "We want machine learning on our patient data",
		Industry:   domain.IndustryHealthcare,
	}
	s.Qualification.BudgetRange = domain.BudgetLarge
	s.Step = domain.StepQualificationTimeline
	s.Phase = domain.PhaseQualification
	return s
}

func TestProcessExtractsNameAndAdvances(t *testing.T) {
	s := newSession()

	out, err := newEngine().Process(context.Background(), Input{Session: s, Utterance: "My name is John Doe"})

	require.NoError(t, err)
	require.NotNil(t, out.Fact)
	assert.Equal(t, domain.FieldName, out.Fact.Field)
	assert.Equal(t, "John Doe", out.Session.Client.Name)
	assert.False(t, out.Ambiguous())
	assert.True(t, out.StepChanged)
	assert.Equal(t, domain.StepDiscoveryEmail, out.Session.Step)
	assert.Equal(t, domain.PhaseDiscovery, out.Session.Phase)
	assert.Equal(t, domain.PhaseGreeting, out.PreviousPhase)
	assert.True(t, out.ScoreChanged)
	assert.Equal(t, 10, *out.Session.LeadScore)
	assert.Equal(t, fixedNow, out.Session.LastMessageAt)

	// The input session is updated in place.
	assert.Equal(t, "John Doe", s.Client.Name)
}

func TestProcessAmbiguousSkipsExtraction(t *testing.T) {
	s := newSession()

	out, err := newEngine().Process(context.Background(), Input{Session: s, Utterance: "maybe"})

	require.NoError(t, err)
	require.True(t, out.Ambiguous())
	assert.Equal(t, ambiguity.ReasonUncertainty, out.Verdict.Reason)
	assert.Equal(t, ambiguity.FixedSelector{}.Pick(ambiguity.ReasonUncertainty), out.Clarification)
	assert.Nil(t, out.Fact)
	assert.False(t, out.StepChanged)
	assert.Equal(t, domain.PhaseGreeting, out.Session.Phase)
	assert.Nil(t, out.Session.LeadScore)
}

func TestProcessEmailQuestionRequiresAddress(t *testing.T) {
	s := newSession()
	s.Client.Name = "Ana"
	s.LastBotQuestion = "Thanks Ana! What's the best email address to reach you?"

	out, err := newEngine().Process(context.Background(), Input{Session: s, Utterance: "you can call me instead"})
	require.NoError(t, err)
	require.True(t, out.Ambiguous())
	assert.Equal(t, ambiguity.ReasonMissingEmailFormat, out.Verdict.Reason)
	assert.Contains(t, out.Clarification, "email")

	out, err = newEngine().Process(context.Background(), Input{Session: s, Utterance: "sure, ana@example.com"})
	require.NoError(t, err)
	require.NotNil(t, out.Fact)
	assert.Equal(t, "ana@example.com", out.Session.Client.Email)
}

func TestProcessNoopIsNotAnError(t *testing.T) {
	s := newSession()
	s.Client.Name = "Ana"
	s.Step = domain.StepDiscoveryEmail
	s.Phase = domain.PhaseDiscovery

	out, err := newEngine().Process(context.Background(), Input{Session: s, Utterance: "Hello there, nice to meet you"})

	require.NoError(t, err)
	assert.Nil(t, out.Fact)
	assert.False(t, out.StepChanged)
	assert.False(t, out.PhaseChanged)
}

func TestProcessRejectsMalformedInput(t *testing.T) {
	closed := newSession()
	closed.Status = domain.StatusCompleted

	tests := []struct {
		name string
		in   Input
	}{
		{"nil session", Input{Utterance: "hi there"}},
		{"zero id", Input{Session: &domain.Session{}, Utterance: "hi there"}},
		{"blank utterance", Input{Session: newSession(), Utterance: "  \n"}},
		{"closed session", Input{Session: closed, Utterance: "hi there"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newEngine().Process(context.Background(), tc.in)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestProcessHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine().Process(ctx, Input{Session: newSession(), Utterance: "My name is Ana"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessRecommendsAndRanksExperts(t *testing.T) {
	s := qualifiedSession()
	busy := ranking.Candidate{ID: uuid.New(), Name: "Busy", Services: []string{domain.ServiceAIStrategy}, Active: true}
	free := ranking.Candidate{ID: uuid.New(), Name: "Free", Services: []string{domain.ServiceAIStrategy}, Active: true}

	out, err := newEngine().Process(context.Background(), Input{
		Session:   s,
		Utterance: "We need this within 2 weeks",
		Roster:    []ranking.Candidate{busy, free},
		Workload:  ranking.Snapshot{busy.ID: 7},
	})

	require.NoError(t, err)
	require.NotNil(t, out.Fact)
	assert.Equal(t, domain.FieldTimeline, out.Fact.Field)
	assert.Equal(t, domain.TimelineUrgent, out.Session.Qualification.Timeline)
	assert.True(t, out.Recommended)
	assert.Equal(t, domain.ServiceAIStrategy, out.Session.RecommendedService)
	assert.Equal(t, domain.StepServiceRecommendation, out.Session.Step)

	require.Len(t, out.Experts, 2)
	assert.Equal(t, "Free", out.Experts[0].Candidate.Name)
	assert.Equal(t, 40.0, out.Experts[0].Score)
	assert.Equal(t, 28.0, out.Experts[1].Score)
	assert.Equal(t, domain.PhaseExpertMatching, out.Session.Phase)
	assert.Equal(t, domain.PhaseExpertMatching, s.Phase)
	assert.True(t, out.PhaseChanged)
}

func TestProcessKeepsLaterPhases(t *testing.T) {
	s := qualifiedSession()
	s.Qualification.Timeline = domain.TimelineLongTerm
	s.RecommendedService = domain.ServiceAIStrategy
	s.Phase = domain.PhaseBooking

	out, err := newEngine().Process(context.Background(), Input{
		Session:   s,
		Utterance: "We have about 40 employees",
		Roster:    []ranking.Candidate{{ID: uuid.New(), Name: "A", Services: []string{domain.ServiceAIStrategy}, Active: true}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.PhaseBooking, out.Session.Phase)
	assert.False(t, out.PhaseChanged)
	assert.Len(t, out.Experts, 1)
	assert.Equal(t, domain.CompanySizeSmall, out.Session.Business.CompanySize)
}

func TestProcessSerializesSameSession(t *testing.T) {
	e := newEngine()
	s := newSession()

	const writers = 32
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		facts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := e.Process(context.Background(), Input{
				Session:   s,
				Utterance: fmt.Sprintf("My name is Person %s", string(rune('a'+i%26))),
			})
			if err != nil {
				t.Errorf("process: %v", err)
				return
			}
			if out.Fact != nil && out.Fact.Field == domain.FieldName {
				mu.Lock()
				facts++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, facts, "exactly one writer should set the name")
	assert.NotEmpty(t, s.Client.Name)
	assert.Zero(t, e.locks.size())
}

func TestProcessParallelSessions(t *testing.T) {
	e := newEngine()
	sessions := make([]*domain.Session, 16)
	for i := range sessions {
		sessions[i] = newSession()
	}

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *domain.Session) {
			defer wg.Done()
			if _, err := e.Process(context.Background(), Input{Session: s, Utterance: "My name is Ana Lopez"}); err != nil {
				t.Errorf("process: %v", err)
			}
		}(s)
	}
	wg.Wait()

	for _, s := range sessions {
		assert.Equal(t, "Ana Lopez", s.Client.Name)
	}
}

func TestSessionLocksRelease(t *testing.T) {
	l := newSessionLocks()
	id := uuid.New()

	unlock := l.lock(id)
	assert.Equal(t, 1, l.size())
	unlock()
	assert.Equal(t, 0, l.size())
}

func TestProcessRanksWithoutAdvancingDuringDiscovery(t *testing.T) {
	s := newSession()
	s.Client = domain.ClientFacts{Name: "Ana", Email: "ana@example.com", Company: "Acme"}
	s.Step = domain.StepDiscoveryChallenges
	s.Phase = domain.PhaseDiscovery

	out, err := newEngine().Process(context.Background(), Input{
		Session:   s,
		Utterance: "We struggle with slow Kubernetes deployments",
		Roster:    []ranking.Candidate{{ID: uuid.New(), Name: "Ops", Services: []string{domain.ServiceCloudDevOps}, Active: true}},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ServiceCloudDevOps, out.Session.RecommendedService)
	assert.Len(t, out.Experts, 1)
	assert.Equal(t, domain.PhaseDiscovery, out.Session.Phase)
	assert.Equal(t, domain.StepContext, out.Session.Step)
}

func TestRefreshRederivesAfterOverride(t *testing.T) {
	e := newEngine()
	s := qualifiedSession()
	s.Override(domain.Fact{Field: domain.FieldTimeline, Value: domain.TimelineNearTerm})

	out, err := e.Refresh(s)

	require.NoError(t, err)
	assert.True(t, out.StepChanged)
	assert.Equal(t, domain.StepServiceRecommendation, s.Step)
	assert.Equal(t, domain.PhasePRDGeneration, s.Phase)
	assert.Equal(t, domain.ServiceAIStrategy, s.RecommendedService)
	require.NotNil(t, s.LeadScore)
	assert.Equal(t, 100, *s.LeadScore)

	_, err = e.Refresh(nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

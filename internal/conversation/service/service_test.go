package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/ambiguity"
	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/conversation/engine"
	"leadchat_backend/internal/conversation/repository"
	"leadchat_backend/internal/events"
	"leadchat_backend/internal/experts/ranking"
	"leadchat_backend/platform/apperr"
	"leadchat_backend/platform/config"
	"leadchat_backend/platform/guard"
	"leadchat_backend/platform/logger"
	"leadchat_backend/platform/metrics"
)

var testNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]domain.Session
	messages  map[uuid.UUID][]domain.Utterance
	conflicts int
	saves     int
	abandoned time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		sessions: make(map[uuid.UUID]domain.Session),
		messages: make(map[uuid.UUID][]domain.Utterance),
	}
}

func (r *fakeRepo) CreateSession(_ context.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeRepo) GetSession(_ context.Context, id uuid.UUID) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, apperr.NotFound("session not found")
	}
	return s.Clone(), nil
}

func (r *fakeRepo) SaveSession(_ context.Context, s domain.Session) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.conflicts > 0 {
		r.conflicts--
		return domain.Session{}, apperr.Conflict("session was modified concurrently")
	}
	stored, ok := r.sessions[s.ID]
	if !ok {
		return domain.Session{}, apperr.NotFound("session not found")
	}
	if stored.Version != s.Version {
		return domain.Session{}, apperr.Conflict("session was modified concurrently")
	}
	s.Version++
	r.sessions[s.ID] = s
	return s.Clone(), nil
}

func (r *fakeRepo) AppendMessage(_ context.Context, u domain.Utterance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[u.SessionID] = append(r.messages[u.SessionID], u)
	return nil
}

func (r *fakeRepo) ListMessages(_ context.Context, id uuid.UUID, limit int) ([]domain.Utterance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[id]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]domain.Utterance(nil), msgs...), nil
}

func (r *fakeRepo) MarkAbandoned(_ context.Context, idleBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandoned = idleBefore
	var n int64
	for id, s := range r.sessions {
		if s.Status == domain.StatusActive && s.LastMessageAt.Before(idleBefore) {
			s.Status = domain.StatusAbandoned
			r.sessions[id] = s
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) ListSessions(_ context.Context, params repository.ListSessionsParams) ([]domain.Session, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if params.Status == "" || s.Status == params.Status {
			out = append(out, s)
		}
	}
	return out, len(out), nil
}

type fakeDirectory struct {
	roster   []ranking.Candidate
	workload ranking.Snapshot
}

func (d fakeDirectory) Roster(context.Context) ([]ranking.Candidate, error) { return d.roster, nil }
func (d fakeDirectory) Workload(context.Context) (ranking.Snapshot, error) {
	return d.workload, nil
}

type failingResponder struct{}

func (failingResponder) Reply(context.Context, domain.Session, []domain.Utterance) (string, error) {
	return "", errors.New("generation unavailable")
}

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) Handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, e.EventName())
	return nil
}

func (r *recorder) has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.names {
		if n == name {
			return true
		}
	}
	return false
}

type fixture struct {
	svc  *Service
	repo *fakeRepo
	bus  *events.InMemoryBus
	rec  *recorder
}

func newFixture(t *testing.T, quotaLimit int) fixture {
	t.Helper()
	log := logger.Nop()
	repo := newFakeRepo()
	bus := events.NewInMemoryBus(log)
	rec := &recorder{}
	for _, name := range []string{
		"conversation.session.started",
		"conversation.fact.extracted",
		"conversation.clarification.requested",
		"conversation.session.completed",
		"conversation.phase.changed",
		"experts.matched",
	} {
		bus.Subscribe(name, rec)
	}

	cfg := &config.Config{PhoneRegion: "US", SessionIdleTimeout: time.Hour}
	quota := guard.NewQuota(guard.NewMemoryStore(), "chat:", quotaLimit, time.Hour)
	eng := engine.New(log,
		engine.WithSelector(ambiguity.FixedSelector{}),
		engine.WithClock(func() time.Time { return testNow }),
	)

	svc := New(repo, eng, bus, quota, cfg, log)
	svc.now = func() time.Time { return testNow }
	svc.SetMetrics(metrics.New())
	return fixture{svc: svc, repo: repo, bus: bus, rec: rec}
}

func (f fixture) seed(t *testing.T, mutate func(*domain.Session)) domain.Session {
	t.Helper()
	s := domain.NewSession(uuid.New(), testNow.Add(-time.Minute))
	if mutate != nil {
		mutate(&s)
	}
	if err := f.repo.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func qualified(s *domain.Session) {
	s.Client = domain.ClientFacts{Name: "Ana", Email: "ana@example.com", Company: "Acme"}
	s.Business = domain.BusinessFacts{
		Challenges: "We want machine learning on our patient data",
		Industry:   domain.IndustryHealthcare,
	}
	s.Qualification.BudgetRange = domain.BudgetLarge
	s.Step = domain.StepQualificationTimeline
	s.Phase = domain.PhaseQualification
}

func TestHandleMessageStartsSession(t *testing.T) {
	f := newFixture(t, 0)

	res, err := f.svc.HandleMessage(context.Background(), nil, "My name is John Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.bus.Wait()

	if !res.Created {
		t.Fatal("expected a new session")
	}
	if res.Session.Client.Name != "John Doe" {
		t.Fatalf("expected extracted name, got %q", res.Session.Client.Name)
	}
	if res.Session.Step != domain.StepDiscoveryEmail {
		t.Fatalf("expected discovery_email step, got %s", res.Session.Step)
	}
	if !strings.Contains(res.Reply, "email") || !strings.Contains(res.Reply, "John") {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if res.Session.LastBotQuestion != res.Reply {
		t.Fatalf("expected reply stored as last question, got %q", res.Session.LastBotQuestion)
	}

	msgs, _ := f.repo.ListMessages(context.Background(), res.Session.ID, 0)
	if len(msgs) != 2 || msgs[0].Role != domain.RoleUser || msgs[1].Role != domain.RoleAssistant {
		t.Fatalf("expected user and assistant messages, got %+v", msgs)
	}
	if !f.rec.has("conversation.session.started") || !f.rec.has("conversation.fact.extracted") {
		t.Fatalf("missing events: %v", f.rec.names)
	}
}

func TestHandleMessageClarificationKeepsLastQuestion(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, func(s *domain.Session) { s.LastBotQuestion = "What's your name?" })

	res, err := f.svc.HandleMessage(context.Background(), &s.ID, "maybe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.bus.Wait()

	if res.Clarification == nil || res.Clarification.Reason != ambiguity.ReasonUncertainty {
		t.Fatalf("expected uncertainty clarification, got %+v", res.Clarification)
	}
	if res.Session.LastBotQuestion != "What's your name?" {
		t.Fatalf("clarification overwrote last question: %q", res.Session.LastBotQuestion)
	}
	if !f.rec.has("conversation.clarification.requested") {
		t.Fatalf("missing clarification event: %v", f.rec.names)
	}
}

func TestHandleMessageRetriesOnConflict(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, nil)
	f.repo.conflicts = 1

	res, err := f.svc.HandleMessage(context.Background(), &s.ID, "My name is John Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.repo.saves != 2 {
		t.Fatalf("expected 2 save attempts, got %d", f.repo.saves)
	}
	if res.Session.Version != s.Version+1 {
		t.Fatalf("expected version %d, got %d", s.Version+1, res.Session.Version)
	}
}

func TestHandleMessageConcurrentTurnsKeepBothFacts(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, func(s *domain.Session) { s.Client.Name = "Ana" })

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, text := range []string{"My email is ana@example.com", "I work at Acme Corp"} {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, err := f.svc.HandleMessage(context.Background(), &s.ID, text)
			errs <- err
		}(text)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stored, err := f.repo.GetSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if stored.Client.Email != "ana@example.com" || stored.Client.Company != "Acme Corp" {
		t.Fatalf("expected both facts to survive, got %+v", stored.Client)
	}
	if stored.Version != s.Version+2 {
		t.Fatalf("expected version %d, got %d", s.Version+2, stored.Version)
	}
}

func TestHandleMessageGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, nil)
	f.repo.conflicts = maxSaveAttempts

	_, err := f.svc.HandleMessage(context.Background(), &s.ID, "My name is John Doe")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if f.repo.saves != maxSaveAttempts {
		t.Fatalf("expected %d attempts, got %d", maxSaveAttempts, f.repo.saves)
	}
}

func TestHandleMessageEnforcesQuota(t *testing.T) {
	f := newFixture(t, 1)
	s := f.seed(t, nil)

	if _, err := f.svc.HandleMessage(context.Background(), &s.ID, "My name is John Doe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := f.svc.HandleMessage(context.Background(), &s.ID, "john@example.com")
	if !apperr.Is(err, apperr.KindTooManyRequests) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestHandleMessageRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, 0)
	closed := f.seed(t, func(s *domain.Session) { s.Status = domain.StatusCompleted })
	missing := uuid.New()

	tests := []struct {
		name    string
		id      *uuid.UUID
		content string
		kind    apperr.Kind
	}{
		{"markup only", nil, "<b></b>", apperr.KindValidation},
		{"closed session", &closed.ID, "hello there", apperr.KindConflict},
		{"unknown session", &missing, "hello there", apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.HandleMessage(context.Background(), tt.id, tt.content)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("expected kind %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestHandleMessageMatchesExperts(t *testing.T) {
	f := newFixture(t, 0)
	expertID := uuid.New()
	f.svc.SetExpertDirectory(fakeDirectory{roster: []ranking.Candidate{{
		ID:       expertID,
		Name:     "Dana",
		Services: []string{domain.ServiceAIStrategy},
		Active:   true,
	}}})
	s := f.seed(t, qualified)

	res, err := f.svc.HandleMessage(context.Background(), &s.ID, "We need this within 2 weeks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.bus.Wait()

	if res.Session.Phase != domain.PhaseExpertMatching {
		t.Fatalf("expected expert_matching, got %s", res.Session.Phase)
	}
	if len(res.Experts) != 1 || res.Experts[0].Candidate.ID != expertID {
		t.Fatalf("unexpected experts: %+v", res.Experts)
	}
	if !f.rec.has("experts.matched") || !f.rec.has("conversation.phase.changed") {
		t.Fatalf("missing events: %v", f.rec.names)
	}
}

func TestHandleMessageFallsBackWhenResponderFails(t *testing.T) {
	f := newFixture(t, 0)
	f.svc.SetResponder(failingResponder{})
	s := f.seed(t, nil)

	res, err := f.svc.HandleMessage(context.Background(), &s.ID, "My name is John Doe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Reply, "email") {
		t.Fatalf("expected scripted email question, got %q", res.Reply)
	}
}

func TestOverrideFactsNormalizesPhone(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, nil)

	got, err := f.svc.OverrideFacts(context.Background(), s.ID, Override{
		Facts: []domain.Fact{{Field: domain.FieldPhone, Value: "(201) 555-0123"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Client.Phone != "+12015550123" {
		t.Fatalf("expected E.164 phone, got %q", got.Client.Phone)
	}

	_, err = f.svc.OverrideFacts(context.Background(), s.ID, Override{
		Facts: []domain.Fact{{Field: domain.FieldPhone, Value: "not a number"}},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOverrideFactsRecomputesDerivedState(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, qualified)

	got, err := f.svc.OverrideFacts(context.Background(), s.ID, Override{
		Facts: []domain.Fact{
			{Field: domain.FieldName, Value: "Ana Lopez"},
			{Field: domain.FieldTimeline, Value: domain.TimelineNearTerm},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Client.Name != "Ana Lopez" {
		t.Fatalf("expected overwritten name, got %q", got.Client.Name)
	}
	if got.Step != domain.StepServiceRecommendation || got.Phase != domain.PhasePRDGeneration {
		t.Fatalf("expected service recommendation, got %s/%s", got.Step, got.Phase)
	}
	if got.RecommendedService != domain.ServiceAIStrategy {
		t.Fatalf("unexpected recommendation %q", got.RecommendedService)
	}
	if score, ok := got.Score(); !ok || score != 100 {
		t.Fatalf("expected score 100, got %d (%t)", score, ok)
	}
}

func TestOverrideFactsRejectsUnknownService(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, nil)
	service := "Underwater Basket Weaving"

	_, err := f.svc.OverrideFacts(context.Background(), s.ID, Override{RecommendedService: &service})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteSession(t *testing.T) {
	f := newFixture(t, 0)
	s := f.seed(t, nil)

	got, err := f.svc.CompleteSession(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.bus.Wait()
	if got.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if !f.rec.has("conversation.session.completed") {
		t.Fatalf("missing completion event: %v", f.rec.names)
	}

	if _, err := f.svc.CompleteSession(context.Background(), s.ID); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on second completion, got %v", err)
	}
}

func TestAbandonIdle(t *testing.T) {
	f := newFixture(t, 0)
	f.seed(t, func(s *domain.Session) { s.LastMessageAt = testNow.Add(-2 * time.Hour) })
	f.seed(t, nil)

	n, err := f.svc.AbandonIdle(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 abandoned session, got %d", n)
	}
	if !f.repo.abandoned.Equal(testNow.Add(-time.Hour)) {
		t.Fatalf("unexpected cutoff %v", f.repo.abandoned)
	}
}

func TestListSessionsClampsLimit(t *testing.T) {
	f := newFixture(t, 0)
	f.seed(t, nil)

	sessions, total, err := f.svc.ListSessions(context.Background(), repository.ListSessionsParams{Limit: 10_000, Offset: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(sessions) != 1 {
		t.Fatalf("expected one session, got %d/%d", len(sessions), total)
	}
}

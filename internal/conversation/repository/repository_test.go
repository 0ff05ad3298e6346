package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
)

func TestSaveSessionQueryIsOptimistic(t *testing.T) {
	query := strings.ToLower(saveSessionQuery)

	requiredFragments := []string{
		"where id = $1 and version = $2",
		"version = version + 1",
		"returning version, updated_at",
	}
	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected optimistic save fragment %q", fragment)
		}
	}
}

func TestMarkAbandonedOnlyTouchesActiveSessions(t *testing.T) {
	query := strings.ToLower(markAbandonedQuery)

	for _, fragment := range []string{"status = 'abandoned'", "where status = 'active'", "last_message_at < $1"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected sweep fragment %q", fragment)
		}
	}
}

func TestListMessagesReturnsChronologicalTail(t *testing.T) {
	query := strings.ToLower(listMessagesQuery)

	if !strings.Contains(query, "order by created_at desc") || !strings.Contains(query, "limit $2") {
		t.Fatal("expected inner query to select the newest messages")
	}
	if !strings.HasSuffix(strings.TrimSpace(query), "order by created_at asc, id asc") {
		t.Fatal("expected outer query to restore chronological order")
	}
}

func TestSessionArgsMatchColumns(t *testing.T) {
	columns := strings.Split(sessionColumns, ",")
	s := domain.NewSession(uuid.New(), time.Now())

	if got := len(sessionArgs(s)); got != len(columns) {
		t.Fatalf("sessionArgs has %d values for %d columns", got, len(columns))
	}
	if !strings.Contains(createSessionQuery, "$23)") {
		t.Fatal("expected create query to bind every column")
	}
}

type fakeRow struct {
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *uuid.UUID:
			*p = r.values[i].(uuid.UUID)
		case *domain.Status:
			*p = r.values[i].(domain.Status)
		case *domain.Phase:
			*p = r.values[i].(domain.Phase)
		case *domain.Step:
			*p = r.values[i].(domain.Step)
		case *string:
			*p = r.values[i].(string)
		case **bool:
			*p = r.values[i].(*bool)
		case **int:
			*p = r.values[i].(*int)
		case *int:
			*p = r.values[i].(int)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

func TestScanSessionRoundTripsDecisionMaker(t *testing.T) {
	s := domain.NewSession(uuid.New(), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Client.Name = "Ana"
	s.Qualification.DecisionMaker = domain.No
	score := 40
	s.LeadScore = &score

	got, err := scanSession(fakeRow{values: sessionArgs(s)})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if got.Qualification.DecisionMaker != domain.No {
		t.Fatalf("expected decision maker No, got %v", got.Qualification.DecisionMaker)
	}
	if got.Client.Name != "Ana" || got.LeadScore == nil || *got.LeadScore != 40 {
		t.Fatalf("unexpected scanned session: %+v", got)
	}
}

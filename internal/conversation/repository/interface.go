package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadchat_backend/internal/conversation/domain"
)

// ListSessionsParams filters and paginates the admin session list.
type ListSessionsParams struct {
	Status domain.Status
	Limit  int
	Offset int
}

// Repository persists chat sessions and their transcripts.
type Repository interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error)
	// SaveSession writes s if its version still matches the stored row and
	// returns the session with the bumped version.
	SaveSession(ctx context.Context, s domain.Session) (domain.Session, error)
	AppendMessage(ctx context.Context, u domain.Utterance) error
	ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Utterance, error)
	// MarkAbandoned flips active sessions idle since before idleBefore.
	MarkAbandoned(ctx context.Context, idleBefore time.Time) (int64, error)
	ListSessions(ctx context.Context, params ListSessionsParams) ([]domain.Session, int, error)
}

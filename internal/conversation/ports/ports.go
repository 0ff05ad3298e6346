// Package ports declares what the conversation module needs from the outside.
package ports

import (
	"context"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/internal/experts/ranking"
)

// Responder generates the assistant's reply for a processed utterance.
// Implementations may call a language model; the conversation service falls
// back to the deterministic step question when none is configured or when it
// returns an error.
type Responder interface {
	Reply(ctx context.Context, s domain.Session, transcript []domain.Utterance) (string, error)
}

// ExpertDirectory supplies the roster and a point-in-time workload snapshot
// for ranking.
type ExpertDirectory interface {
	Roster(ctx context.Context) ([]ranking.Candidate, error)
	Workload(ctx context.Context) (ranking.Snapshot, error)
}


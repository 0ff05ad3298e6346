// Package repository persists the expert roster and reads booking load.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadchat_backend/internal/experts/ranking"
)

const listActiveQuery = `
	SELECT id, name, email, specialties, services, active
	FROM experts
	WHERE active
	ORDER BY name, id`

const upsertExpertQuery = `
	INSERT INTO experts (id, name, email, specialties, services, active)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (email) DO UPDATE
	SET name = EXCLUDED.name,
		specialties = EXCLUDED.specialties,
		services = EXCLUDED.services,
		active = EXCLUDED.active,
		updated_at = now()
	RETURNING id`

const workloadCountsQuery = `
	SELECT b.expert_id, COUNT(*)
	FROM bookings b
	JOIN experts e ON e.id = b.expert_id
	WHERE b.status = 'confirmed' AND b.starts_at > $1 AND e.active
	GROUP BY b.expert_id`

const recordHandoffQuery = `
	INSERT INTO expert_handoffs (id, session_id, expert_id, rank, score, service)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (session_id, expert_id) DO NOTHING`

// Handoff records that a ranked expert was passed a qualified lead.
type Handoff struct {
	SessionID uuid.UUID
	ExpertID  uuid.UUID
	Rank      int
	Score     float64
	Service   string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListActive returns every active expert ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]ranking.Candidate, error) {
	rows, err := r.pool.Query(ctx, listActiveQuery)
	if err != nil {
		return nil, fmt.Errorf("list experts: %w", err)
	}
	defer rows.Close()

	var out []ranking.Candidate
	for rows.Next() {
		var c ranking.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Specialties, &c.Services, &c.Active); err != nil {
			return nil, fmt.Errorf("scan expert: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate experts: %w", err)
	}
	return out, nil
}

// Upsert inserts or updates an expert keyed by email and returns the stored id.
func (r *Repository) Upsert(ctx context.Context, c ranking.Candidate) (uuid.UUID, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	specialties := c.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	services := c.Services
	if services == nil {
		services = []string{}
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, upsertExpertQuery, c.ID, c.Name, c.Email, specialties, services, c.Active).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert expert %s: %w", c.Email, err)
	}
	return id, nil
}

// WorkloadCounts returns confirmed upcoming bookings per active expert.
// Experts without bookings are absent from the map.
func (r *Repository) WorkloadCounts(ctx context.Context, now time.Time) (ranking.Snapshot, error) {
	rows, err := r.pool.Query(ctx, workloadCountsQuery, now)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()

	snapshot := make(ranking.Snapshot)
	for rows.Next() {
		var (
			id    uuid.UUID
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan booking count: %w", err)
		}
		snapshot[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking counts: %w", err)
	}
	return snapshot, nil
}

// RecordHandoff stores a handoff once per (session, expert).
func (r *Repository) RecordHandoff(ctx context.Context, h Handoff) error {
	_, err := r.pool.Exec(ctx, recordHandoffQuery, uuid.New(), h.SessionID, h.ExpertID, h.Rank, h.Score, h.Service)
	if err != nil {
		return fmt.Errorf("record handoff: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadchat_backend/internal/conversation/domain"
	"leadchat_backend/platform/apperr"
)

const (
	sessionNotFoundMessage = "session not found"
	staleSessionMessage    = "session was modified concurrently"

	defaultMessageLimit = 200
	defaultListLimit    = 50
	maxListLimit        = 200
)

const sessionColumns = `id, status, phase, step,
	client_name, client_email, client_company, client_phone,
	industry, challenges, company_size, tech_stack,
	budget_range, timeline, is_decision_maker, success_criteria,
	lead_score, recommended_service, last_bot_question, version,
	created_at, updated_at, last_message_at`

const createSessionQuery = `
	INSERT INTO chat_sessions (` + sessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

const getSessionQuery = `
	SELECT ` + sessionColumns + `
	FROM chat_sessions
	WHERE id = $1`

const saveSessionQuery = `
	UPDATE chat_sessions
	SET status = $3, phase = $4, step = $5,
		client_name = $6, client_email = $7, client_company = $8, client_phone = $9,
		industry = $10, challenges = $11, company_size = $12, tech_stack = $13,
		budget_range = $14, timeline = $15, is_decision_maker = $16, success_criteria = $17,
		lead_score = $18, recommended_service = $19, last_bot_question = $20,
		last_message_at = $21,
		version = version + 1,
		updated_at = now()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at`

const appendMessageQuery = `
	INSERT INTO chat_messages (id, session_id, role, content, created_at)
	VALUES ($1, $2, $3, $4, $5)`

const listMessagesQuery = `
	SELECT id, session_id, role, content, created_at
	FROM (
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	) recent
	ORDER BY created_at ASC, id ASC`

const markAbandonedQuery = `
	UPDATE chat_sessions
	SET status = 'abandoned', version = version + 1, updated_at = now()
	WHERE status = 'active' AND last_message_at < $1`

const listSessionsQuery = `
	SELECT ` + sessionColumns + `, COUNT(*) OVER() AS total
	FROM chat_sessions
	WHERE ($1::text = '' OR status = $1::text)
	ORDER BY last_message_at DESC, id
	LIMIT $2 OFFSET $3`

// Repo implements Repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateSession inserts a new session row.
func (r *Repo) CreateSession(ctx context.Context, s domain.Session) error {
	if _, err := r.pool.Exec(ctx, createSessionQuery, sessionArgs(s)...); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession loads a session by ID.
func (r *Repo) GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, getSessionQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, apperr.NotFound(sessionNotFoundMessage)
		}
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// SaveSession performs an optimistic update keyed on (id, version).
func (r *Repo) SaveSession(ctx context.Context, s domain.Session) (domain.Session, error) {
	var (
		version   int
		updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, saveSessionQuery,
		s.ID, s.Version, s.Status, s.Phase, s.Step,
		s.Client.Name, s.Client.Email, s.Client.Company, s.Client.Phone,
		s.Business.Industry, s.Business.Challenges, s.Business.CompanySize, s.Business.TechStack,
		s.Qualification.BudgetRange, s.Qualification.Timeline, s.Qualification.DecisionMaker.Ptr(), s.Qualification.SuccessCriteria,
		s.LeadScore, s.RecommendedService, s.LastBotQuestion,
		s.LastMessageAt,
	).Scan(&version, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, r.staleOrMissing(ctx, s.ID)
		}
		return domain.Session{}, fmt.Errorf("save session: %w", err)
	}

	saved := s.Clone()
	saved.Version = version
	saved.UpdatedAt = updatedAt
	return saved, nil
}

// staleOrMissing distinguishes a lost version race from a deleted row.
func (r *Repo) staleOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chat_sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if !exists {
		return apperr.NotFound(sessionNotFoundMessage)
	}
	return apperr.Conflict(staleSessionMessage)
}

// AppendMessage records one transcript entry.
func (r *Repo) AppendMessage(ctx context.Context, u domain.Utterance) error {
	if _, err := r.pool.Exec(ctx, appendMessageQuery, u.ID, u.SessionID, u.Role, u.Content, u.CreatedAt); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns the most recent limit messages in chronological order.
func (r *Repo) ListMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.Utterance, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	rows, err := r.pool.Query(ctx, listMessagesQuery, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.Utterance, 0)
	for rows.Next() {
		var u domain.Utterance
		if err := rows.Scan(&u.ID, &u.SessionID, &u.Role, &u.Content, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// MarkAbandoned closes idle sessions.
func (r *Repo) MarkAbandoned(ctx context.Context, idleBefore time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, markAbandonedQuery, idleBefore)
	if err != nil {
		return 0, fmt.Errorf("mark abandoned sessions: %w", err)
	}
	return result.RowsAffected(), nil
}

// ListSessions lists sessions newest-activity first with a total count.
func (r *Repo) ListSessions(ctx context.Context, params ListSessionsParams) ([]domain.Session, int, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, listSessionsQuery, string(params.Status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.Session, 0)
	total := 0
	for rows.Next() {
		s, err := scanSession(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner, extra ...any) (domain.Session, error) {
	var (
		s             domain.Session
		decisionMaker *bool
	)
	dest := []any{
		&s.ID, &s.Status, &s.Phase, &s.Step,
		&s.Client.Name, &s.Client.Email, &s.Client.Company, &s.Client.Phone,
		&s.Business.Industry, &s.Business.Challenges, &s.Business.CompanySize, &s.Business.TechStack,
		&s.Qualification.BudgetRange, &s.Qualification.Timeline, &decisionMaker, &s.Qualification.SuccessCriteria,
		&s.LeadScore, &s.RecommendedService, &s.LastBotQuestion, &s.Version,
		&s.CreatedAt, &s.UpdatedAt, &s.LastMessageAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Session{}, err
	}
	s.Qualification.DecisionMaker = domain.TristateFrom(decisionMaker)
	return s, nil
}

func sessionArgs(s domain.Session) []any {
	return []any{
		s.ID, s.Status, s.Phase, s.Step,
		s.Client.Name, s.Client.Email, s.Client.Company, s.Client.Phone,
		s.Business.Industry, s.Business.Challenges, s.Business.CompanySize, s.Business.TechStack,
		s.Qualification.BudgetRange, s.Qualification.Timeline, s.Qualification.DecisionMaker.Ptr(), s.Qualification.SuccessCriteria,
		s.LeadScore, s.RecommendedService, s.LastBotQuestion, s.Version,
		s.CreatedAt, s.UpdatedAt, s.LastMessageAt,
	}
}

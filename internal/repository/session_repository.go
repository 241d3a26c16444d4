package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// SessionRepository handles exam session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, candidate_id, organization_id, exam_kind, status,
	duration_minutes, created_at, started_at, completed_at,
	score, estimated_level, integrity_score, integrity_status, breakdown, result_hash`

func scanSession(row interface{ Scan(...any) error }) (*model.ExamSession, error) {
	s := &model.ExamSession{}
	err := row.Scan(
		&s.ID, &s.CandidateID, &s.OrganizationID, &s.Kind, &s.Status,
		&s.DurationMinutes, &s.CreatedAt, &s.StartedAt, &s.CompletedAt,
		&s.Score, &s.EstimatedLevel, &s.IntegrityScore, &s.IntegrityStatus,
		&s.Breakdown, &s.ResultHash,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create allocates a session row in ASSIGNED state. No cost is charged here.
func (r *SessionRepository) Create(ctx context.Context, s *model.ExamSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_sessions (candidate_id, organization_id, exam_kind, status, duration_minutes, integrity_status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.CandidateID, s.OrganizationID, s.Kind, model.SessionStatusAssigned,
		s.DurationMinutes, model.IntegrityStatusValid,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetByID retrieves a session by its identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
}

// Start transitions ASSIGNED → STARTED and stamps started_at. Returns the
// number of rows affected: zero means the session was not in ASSIGNED state,
// which the caller treats as an idempotent no-op or an invalid transition.
func (r *SessionRepository) Start(ctx context.Context, id uuid.UUID, startedAt time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, started_at = $2
		 WHERE id = $3 AND status = $4`,
		model.SessionStatusStarted, startedAt, id, model.SessionStatusAssigned)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Complete stamps the final result. The status guard makes completion a
// single atomic transition: zero rows affected means the session was not
// STARTED (already completed, terminated, or never begun).
func (r *SessionRepository) Complete(
	ctx context.Context,
	id uuid.UUID,
	score int,
	level model.Level,
	integrityScore int,
	integrityStatus model.IntegrityStatus,
	breakdown json.RawMessage,
	resultHash string,
	completedAt time.Time,
) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, score = $2, estimated_level = $3,
		     integrity_score = $4, integrity_status = $5,
		     breakdown = $6, result_hash = $7, completed_at = $8
		 WHERE id = $9 AND status = $10`,
		model.SessionStatusCompleted, score, level,
		integrityScore, integrityStatus,
		breakdown, resultHash, completedAt,
		id, model.SessionStatusStarted)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// TerminateForCheating moves STARTED → CHEATING_DETECTED. No score is
// recorded; a cheating-terminated session has no valid result.
func (r *SessionRepository) TerminateForCheating(ctx context.Context, id uuid.UUID, integrityScore int, completedAt time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions
		 SET status = $1, integrity_score = $2, integrity_status = $3, completed_at = $4
		 WHERE id = $5 AND status = $6`,
		model.SessionStatusCheatingDetected, integrityScore, model.IntegrityStatusFailed,
		completedAt, id, model.SessionStatusStarted)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IncrementIntegrity bumps the saturating violation counter and returns the
// new count. Only live sessions accumulate violations.
func (r *SessionRepository) IncrementIntegrity(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`UPDATE exam_sessions
		 SET integrity_score = integrity_score + 1
		 WHERE id = $1 AND status = $2
		 RETURNING integrity_score`,
		id, model.SessionStatusStarted).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SetIntegrityStatus persists the status derived from the violation count.
func (r *SessionRepository) SetIntegrityStatus(ctx context.Context, id uuid.UUID, status model.IntegrityStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sessions SET integrity_status = $1 WHERE id = $2`,
		status, id)
	return err
}

// ListByCandidate retrieves all sessions for a candidate, newest first.
func (r *SessionRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.ExamSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+`
		 FROM exam_sessions
		 WHERE candidate_id = $1
		 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.ExamSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

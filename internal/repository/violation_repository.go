package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// ViolationRepository persists integrity violation events.
type ViolationRepository struct {
	pool *pgxpool.Pool
}

// NewViolationRepository creates a new ViolationRepository.
func NewViolationRepository(pool *pgxpool.Pool) *ViolationRepository {
	return &ViolationRepository{pool: pool}
}

// InsertMany bulk-inserts the violation list recorded at cheating
// termination.
func (r *ViolationRepository) InsertMany(ctx context.Context, sessionID uuid.UUID, violations []model.ReportViolationRequest) error {
	rows := make([][]any, 0, len(violations))
	for _, v := range violations {
		rows = append(rows, []any{sessionID, v.Kind, v.Detail})
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"session_violations"},
		[]string{"session_id", "kind", "detail"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// ListBySession returns all recorded violations for a session, oldest first.
func (r *ViolationRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Violation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, kind, detail, recorded_at
		 FROM session_violations
		 WHERE session_id = $1
		 ORDER BY recorded_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []model.Violation
	for rows.Next() {
		var v model.Violation
		if err := rows.Scan(&v.ID, &v.SessionID, &v.Kind, &v.Detail, &v.RecordedAt); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

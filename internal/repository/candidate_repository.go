package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// CandidateRepository handles candidate profile data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

const candidateColumns = `id, organization_id, name, email, password_hash, current_level, created_at`

func scanCandidate(row interface{ Scan(...any) error }) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := row.Scan(
		&c.ID, &c.OrganizationID, &c.Name, &c.Email, &c.PasswordHash,
		&c.CurrentLevel, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a candidate by identifier.
func (r *CandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
}

// GetByEmail retrieves a candidate for authentication.
func (r *CandidateRepository) GetByEmail(ctx context.Context, email string) (*model.Candidate, error) {
	return scanCandidate(r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE email = $1`, email))
}

// UpdateLevel sets the candidate's profile proficiency tag.
func (r *CandidateRepository) UpdateLevel(ctx context.Context, id uuid.UUID, level model.Level) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidates SET current_level = $1 WHERE id = $2`, level, id)
	return err
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// QuestionRepository is the read-only gateway to the externally owned
// question pool. Every lookup takes an explicit organization scope: an
// organization sees the global pool plus its own items, unaffiliated
// candidates see the global pool only.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, organization_id, level, topic, question_text, options, correct_option, is_recording, audio_url`

func scanQuestion(row interface{ Scan(...any) error }) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(
		&q.ID, &q.OrganizationID, &q.Level, &q.Topic, &q.Text,
		&q.Options, &q.CorrectOption, &q.IsRecording, &q.AudioURL,
	)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID retrieves a question within the given organization scope.
func (r *QuestionRepository) GetByID(ctx context.Context, orgID *uuid.UUID, id uuid.UUID) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1 AND (organization_id IS NULL`
	args := []any{id}
	if orgID != nil {
		args = append(args, *orgID)
		query += fmt.Sprintf(" OR organization_id = $%d", len(args))
	}
	query += ")"

	return scanQuestion(r.pool.QueryRow(ctx, query, args...))
}

// FindNext returns the first eligible question at the target level,
// preferring a topic different from avoidTopic and excluding already answered
// IDs. Falls back to same-topic when nothing else fits. Ties resolve by
// repository order (insertion order), which keeps sequencing deterministic
// for a given answer sequence. Returns pgx.ErrNoRows when the pool is
// exhausted at this level.
func (r *QuestionRepository) FindNext(ctx context.Context, orgID *uuid.UUID, level model.Level, avoidTopic string, exclude []uuid.UUID) (*model.Question, error) {
	if avoidTopic != "" {
		q, err := r.findNext(ctx, orgID, level, &avoidTopic, exclude)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return r.findNext(ctx, orgID, level, nil, exclude)
}

func (r *QuestionRepository) findNext(ctx context.Context, orgID *uuid.UUID, level model.Level, avoidTopic *string, exclude []uuid.UUID) (*model.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE level = $1`
	args := []any{level}

	if orgID != nil {
		args = append(args, *orgID)
		query += fmt.Sprintf(" AND (organization_id IS NULL OR organization_id = $%d)", len(args))
	} else {
		query += " AND organization_id IS NULL"
	}

	if avoidTopic != nil {
		args = append(args, *avoidTopic)
		query += fmt.Sprintf(" AND topic <> $%d", len(args))
	}

	if len(exclude) > 0 {
		args = append(args, exclude)
		query += fmt.Sprintf(" AND NOT (id = ANY($%d))", len(args))
	}

	query += " ORDER BY position ASC, id ASC LIMIT 1"

	return scanQuestion(r.pool.QueryRow(ctx, query, args...))
}

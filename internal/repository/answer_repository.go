package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// AnswerRepository handles the per-session answer ledger.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Upsert creates or updates the answer keyed by (session, question). A
// submitted answer never reverts to draft: submitted only latches true, so a
// late autosave cannot downgrade a committed answer.
func (r *AnswerRepository) Upsert(ctx context.Context, a *model.Answer) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO answers (session_id, question_id, selected_option, is_correct, submitted, ai_score, feedback)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id, question_id) DO UPDATE
		 SET selected_option = EXCLUDED.selected_option,
		     is_correct = EXCLUDED.is_correct,
		     submitted = answers.submitted OR EXCLUDED.submitted,
		     ai_score = EXCLUDED.ai_score,
		     feedback = EXCLUDED.feedback,
		     updated_at = NOW()
		 RETURNING id, created_at`,
		a.SessionID, a.QuestionID, a.SelectedOption, a.IsCorrect, a.Submitted,
		a.AIScore, a.Feedback,
	).Scan(&a.ID, &a.CreatedAt)
}

// ListBySession returns the full ledger joined with question facts, oldest
// first. created_at is the recency ordering key for the sequencer.
func (r *AnswerRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnsweredQuestion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.session_id, a.question_id, a.selected_option, a.is_correct,
		        a.submitted, a.ai_score, a.feedback, a.created_at, a.updated_at,
		        q.level, q.topic, q.question_text, q.options, q.is_recording, q.audio_url
		 FROM answers a
		 JOIN questions q ON a.question_id = q.id
		 WHERE a.session_id = $1
		 ORDER BY a.created_at ASC, a.id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.AnsweredQuestion
	for rows.Next() {
		var a model.AnsweredQuestion
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.QuestionID, &a.SelectedOption, &a.IsCorrect,
			&a.Submitted, &a.AIScore, &a.Feedback, &a.CreatedAt, &a.UpdatedAt,
			&a.Question.Level, &a.Question.Topic, &a.Question.Text,
			&a.Question.Options, &a.Question.IsRecording, &a.Question.AudioURL,
		); err != nil {
			return nil, err
		}
		a.Question.ID = a.QuestionID
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

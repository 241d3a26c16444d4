package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one candidate response to one question within one session.
// Uniqueness per (session, question): an existing row is updated in place,
// which is what makes autosave-before-commit safe to repeat.
type Answer struct {
	ID             uuid.UUID `json:"id"`
	SessionID      uuid.UUID `json:"session_id"`
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption string    `json:"selected_option"`
	IsCorrect      bool      `json:"is_correct"`
	// Submitted is false for autosaved drafts. Only submitted answers feed
	// the sequencer and the scoring engine.
	Submitted bool       `json:"submitted"`
	AIScore   *float64   `json:"ai_score,omitempty"`
	Feedback  *string    `json:"feedback,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// AnsweredQuestion joins an answer with the question it responds to. The
// served-question history of a session is exactly this view over the ledger;
// no separate stored sequence exists to fall out of sync with it.
type AnsweredQuestion struct {
	Answer
	Question QuestionForCandidate `json:"question"`
}

// AnswerRequest is the payload for submitting or autosaving an answer.
type AnswerRequest struct {
	QuestionID     uuid.UUID `json:"question_id" binding:"required"`
	SelectedOption string    `json:"selected_option" binding:"required,max=4096"`
}

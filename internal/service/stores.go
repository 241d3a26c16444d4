package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/notify"
)

// Store interfaces narrow the repositories to what each service needs, so
// the services can be exercised against in-memory fakes.

type SessionStore interface {
	Create(ctx context.Context, s *model.ExamSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSession, error)
	Start(ctx context.Context, id uuid.UUID, startedAt time.Time) (int64, error)
	Complete(ctx context.Context, id uuid.UUID, score int, level model.Level,
		integrityScore int, integrityStatus model.IntegrityStatus,
		breakdown json.RawMessage, resultHash string, completedAt time.Time) (int64, error)
	TerminateForCheating(ctx context.Context, id uuid.UUID, integrityScore int, completedAt time.Time) (int64, error)
	IncrementIntegrity(ctx context.Context, id uuid.UUID) (int, error)
	SetIntegrityStatus(ctx context.Context, id uuid.UUID, status model.IntegrityStatus) error
	ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]model.ExamSession, error)
}

type AnswerStore interface {
	Upsert(ctx context.Context, a *model.Answer) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AnsweredQuestion, error)
}

type QuestionStore interface {
	GetByID(ctx context.Context, orgID *uuid.UUID, id uuid.UUID) (*model.Question, error)
	FindNext(ctx context.Context, orgID *uuid.UUID, level model.Level, avoidTopic string, exclude []uuid.UUID) (*model.Question, error)
}

type CandidateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
	GetByEmail(ctx context.Context, email string) (*model.Candidate, error)
	UpdateLevel(ctx context.Context, id uuid.UUID, level model.Level) error
}

type CreditStore interface {
	DebitCompletion(ctx context.Context, orgID, sessionID uuid.UUID, cost int) error
}

type ViolationStore interface {
	InsertMany(ctx context.Context, sessionID uuid.UUID, violations []model.ReportViolationRequest) error
}

type LevelNotifier interface {
	EnqueueLevelChange(ctx context.Context, event notify.LevelChange) error
}

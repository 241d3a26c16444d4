package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/notify"
)

// In-memory store fakes mirroring the repositories' status guards.

type fakeSessionStore struct {
	sessions map[uuid.UUID]*model.ExamSession
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*model.ExamSession)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.ExamSession) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	clone := *s
	f.sessions[s.ID] = &clone
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id uuid.UUID) (*model.ExamSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionStore) Start(_ context.Context, id uuid.UUID, startedAt time.Time) (int64, error) {
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusAssigned {
		return 0, nil
	}
	s.Status = model.SessionStatusStarted
	s.StartedAt = &startedAt
	return 1, nil
}

func (f *fakeSessionStore) Complete(_ context.Context, id uuid.UUID, score int, level model.Level,
	integrityScore int, integrityStatus model.IntegrityStatus,
	breakdown json.RawMessage, resultHash string, completedAt time.Time) (int64, error) {
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusStarted {
		return 0, nil
	}
	s.Status = model.SessionStatusCompleted
	s.Score = &score
	s.EstimatedLevel = &level
	s.IntegrityScore = integrityScore
	s.IntegrityStatus = integrityStatus
	s.Breakdown = breakdown
	s.ResultHash = &resultHash
	s.CompletedAt = &completedAt
	return 1, nil
}

func (f *fakeSessionStore) TerminateForCheating(_ context.Context, id uuid.UUID, integrityScore int, completedAt time.Time) (int64, error) {
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusStarted {
		return 0, nil
	}
	s.Status = model.SessionStatusCheatingDetected
	s.IntegrityScore = integrityScore
	s.IntegrityStatus = model.IntegrityStatusFailed
	s.CompletedAt = &completedAt
	return 1, nil
}

func (f *fakeSessionStore) IncrementIntegrity(_ context.Context, id uuid.UUID) (int, error) {
	s, ok := f.sessions[id]
	if !ok || s.Status != model.SessionStatusStarted {
		return 0, pgx.ErrNoRows
	}
	s.IntegrityScore++
	return s.IntegrityScore, nil
}

func (f *fakeSessionStore) SetIntegrityStatus(_ context.Context, id uuid.UUID, status model.IntegrityStatus) error {
	if s, ok := f.sessions[id]; ok {
		s.IntegrityStatus = status
	}
	return nil
}

func (f *fakeSessionStore) ListByCandidate(_ context.Context, candidateID uuid.UUID) ([]model.ExamSession, error) {
	var out []model.ExamSession
	for _, s := range f.sessions {
		if s.CandidateID == candidateID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAnswerStore struct {
	answers []*model.AnsweredQuestion
	// questions lets the fake fill in joined question facts on Upsert.
	questions map[uuid.UUID]*model.Question
}

func newFakeAnswerStore(questions *fakeQuestionStore) *fakeAnswerStore {
	byID := make(map[uuid.UUID]*model.Question)
	if questions != nil {
		for _, q := range questions.pool {
			byID[q.ID] = q
		}
	}
	return &fakeAnswerStore{questions: byID}
}

func (f *fakeAnswerStore) Upsert(_ context.Context, a *model.Answer) error {
	for _, existing := range f.answers {
		if existing.SessionID == a.SessionID && existing.QuestionID == a.QuestionID {
			existing.SelectedOption = a.SelectedOption
			existing.IsCorrect = a.IsCorrect
			existing.Submitted = existing.Submitted || a.Submitted
			existing.AIScore = a.AIScore
			existing.Feedback = a.Feedback
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			return nil
		}
	}

	a.ID = uuid.New()
	a.CreatedAt = time.Now().Add(time.Duration(len(f.answers)) * time.Millisecond)
	entry := &model.AnsweredQuestion{Answer: *a}
	if q, ok := f.questions[a.QuestionID]; ok {
		entry.Question = *q.ForCandidate()
	}
	f.answers = append(f.answers, entry)
	return nil
}

func (f *fakeAnswerStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AnsweredQuestion, error) {
	var out []model.AnsweredQuestion
	for _, a := range f.answers {
		if a.SessionID == sessionID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// seed installs a submitted answer directly, bypassing evaluation.
func (f *fakeAnswerStore) seed(sessionID uuid.UUID, q *model.Question, correct bool) {
	f.answers = append(f.answers, &model.AnsweredQuestion{
		Answer: model.Answer{
			ID:         uuid.New(),
			SessionID:  sessionID,
			QuestionID: q.ID,
			IsCorrect:  correct,
			Submitted:  true,
			CreatedAt:  time.Now().Add(time.Duration(len(f.answers)) * time.Millisecond),
		},
		Question: *q.ForCandidate(),
	})
}

type fakeQuestionStore struct {
	pool []*model.Question
}

func (f *fakeQuestionStore) GetByID(_ context.Context, _ *uuid.UUID, id uuid.UUID) (*model.Question, error) {
	for _, q := range f.pool {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// FindNext mirrors the repository: prefer a different topic, fall back to
// same topic, first match in pool order wins.
func (f *fakeQuestionStore) FindNext(_ context.Context, _ *uuid.UUID, level model.Level, avoidTopic string, exclude []uuid.UUID) (*model.Question, error) {
	excluded := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	var fallback *model.Question
	for _, q := range f.pool {
		if q.Level != level || excluded[q.ID] {
			continue
		}
		if avoidTopic == "" || q.Topic != avoidTopic {
			return q, nil
		}
		if fallback == nil {
			fallback = q
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeCandidateStore struct {
	candidates map[uuid.UUID]*model.Candidate
}

func newFakeCandidateStore() *fakeCandidateStore {
	return &fakeCandidateStore{candidates: make(map[uuid.UUID]*model.Candidate)}
}

func (f *fakeCandidateStore) GetByID(_ context.Context, id uuid.UUID) (*model.Candidate, error) {
	c, ok := f.candidates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCandidateStore) GetByEmail(_ context.Context, email string) (*model.Candidate, error) {
	for _, c := range f.candidates {
		if strings.EqualFold(c.Email, email) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCandidateStore) UpdateLevel(_ context.Context, id uuid.UUID, level model.Level) error {
	if c, ok := f.candidates[id]; ok {
		c.CurrentLevel = &level
	}
	return nil
}

type fakeCreditStore struct {
	balances map[uuid.UUID]int
	debits   int
	err      error
}

func newFakeCreditStore() *fakeCreditStore {
	return &fakeCreditStore{balances: make(map[uuid.UUID]int)}
}

func (f *fakeCreditStore) DebitCompletion(_ context.Context, orgID, _ uuid.UUID, cost int) error {
	if f.err != nil {
		return f.err
	}
	f.balances[orgID] -= cost
	f.debits++
	return nil
}

type fakeViolationStore struct {
	inserted map[uuid.UUID][]model.ReportViolationRequest
}

func newFakeViolationStore() *fakeViolationStore {
	return &fakeViolationStore{inserted: make(map[uuid.UUID][]model.ReportViolationRequest)}
}

func (f *fakeViolationStore) InsertMany(_ context.Context, sessionID uuid.UUID, violations []model.ReportViolationRequest) error {
	f.inserted[sessionID] = append(f.inserted[sessionID], violations...)
	return nil
}

type fakeNotifier struct {
	events []notify.LevelChange
}

func (f *fakeNotifier) EnqueueLevelChange(_ context.Context, event notify.LevelChange) error {
	f.events = append(f.events, event)
	return nil
}

type fakePublisher struct {
	events []ViolationEvent
}

func (f *fakePublisher) PublishViolation(_ context.Context, event ViolationEvent) error {
	f.events = append(f.events, event)
	return nil
}

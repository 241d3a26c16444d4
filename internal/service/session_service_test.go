package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/engine"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionEnv struct {
	svc         *SessionService
	sessions    *fakeSessionStore
	answers     *fakeAnswerStore
	candidates  *fakeCandidateStore
	credits     *fakeCreditStore
	notifier    *fakeNotifier
	cfg         *config.Config
	candidateID uuid.UUID
	clock       time.Time
}

func newSessionEnv(t *testing.T) *sessionEnv {
	t.Helper()

	env := &sessionEnv{
		sessions:    newFakeSessionStore(),
		answers:     newFakeAnswerStore(nil),
		candidates:  newFakeCandidateStore(),
		credits:     newFakeCreditStore(),
		notifier:    &fakeNotifier{},
		cfg:         &config.Config{ResultHashSecret: "test-hash-secret", CompletionCreditCost: 1},
		candidateID: uuid.New(),
		clock:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	env.candidates.candidates[env.candidateID] = &model.Candidate{
		ID:    env.candidateID,
		Email: "anna@example.com",
	}

	env.svc = NewSessionService(env.cfg, env.sessions, env.answers, env.candidates, env.credits, env.notifier, zerolog.Nop())
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *sessionEnv) started(t *testing.T, orgID *uuid.UUID, kind model.ExamKind) *model.ExamSession {
	t.Helper()
	ctx := context.Background()

	session, err := e.svc.Create(ctx, e.candidateID, orgID, kind)
	require.NoError(t, err)
	session, err = e.svc.Start(ctx, e.candidateID, session.ID)
	require.NoError(t, err)
	return session
}

// question builds a pool item for seeding the answer ledger directly.
func poolQuestion(level model.Level, topic string) *model.Question {
	return &model.Question{ID: uuid.New(), Level: level, Topic: topic, CorrectOption: "b"}
}

func TestCreateSession(t *testing.T) {
	env := newSessionEnv(t)

	session, err := env.svc.Create(context.Background(), env.candidateID, nil, model.ExamKindDiagnostic)
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusAssigned, session.Status)
	assert.Equal(t, 15, session.DurationMinutes)
	assert.Equal(t, model.IntegrityStatusValid, session.IntegrityStatus)
	assert.Nil(t, session.StartedAt)
}

func TestStartIsIdempotent(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	session, err := env.svc.Create(ctx, env.candidateID, nil, model.ExamKindExam)
	require.NoError(t, err)

	first, err := env.svc.Start(ctx, env.candidateID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, first.StartedAt)

	// A later start call must not move the clock anchor.
	env.clock = env.clock.Add(5 * time.Minute)
	second, err := env.svc.Start(ctx, env.candidateID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionStatusStarted, second.Status)
	assert.True(t, second.StartedAt.Equal(*first.StartedAt))
}

func TestStartRejectsWrongOwner(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)

	_, err := env.svc.Start(context.Background(), uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrNotSessionOwner)
}

func TestListReturnsOnlyOwnSessions(t *testing.T) {
	env := newSessionEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, env.candidateID, nil, model.ExamKindExam)
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, env.candidateID, nil, model.ExamKindPractice)
	require.NoError(t, err)
	_, err = env.svc.Create(ctx, uuid.New(), nil, model.ExamKindExam)
	require.NoError(t, err)

	sessions, err := env.svc.List(ctx, env.candidateID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, s := range sessions {
		assert.Equal(t, env.candidateID, s.CandidateID)
	}
}

func TestStateResumesFromLedger(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindDiagnostic)

	q1 := poolQuestion(model.LevelB1, "grammar")
	q2 := poolQuestion(model.LevelB2, "vocabulary")
	env.answers.seed(session.ID, q1, true)
	env.answers.seed(session.ID, q2, false)
	// Autosaved draft: visible in state, not counted as progress.
	draft := poolQuestion(model.LevelB1, "reading")
	env.answers.answers = append(env.answers.answers, &model.AnsweredQuestion{
		Answer:   model.Answer{ID: uuid.New(), SessionID: session.ID, QuestionID: draft.ID, SelectedOption: "c"},
		Question: *draft.ForCandidate(),
	})

	env.clock = env.clock.Add(400 * time.Second)
	state, err := env.svc.State(context.Background(), env.candidateID, session.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SessionStatusStarted, state.Status)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Len(t, state.Questions, 3)
	assert.Equal(t, "c", state.Answers[draft.ID.String()])
	// 15 minutes minus 400 elapsed seconds.
	assert.Equal(t, 500, state.TimeRemainingSeconds)
}

func TestStateTimeRemainingFloorsAtZero(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindDiagnostic)

	env.clock = env.clock.Add(2 * time.Hour)
	state, err := env.svc.State(context.Background(), env.candidateID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.TimeRemainingSeconds)
}

func TestCompleteScoresAndSignsResult(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)

	env.answers.seed(session.ID, poolQuestion(model.LevelA1, "grammar"), true)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "vocabulary"), true)
	env.answers.seed(session.ID, poolQuestion(model.LevelB2, "reading"), false)

	result, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	require.NoError(t, err)

	// raw 40 of max 80 scaled onto the 699 ceiling.
	assert.Equal(t, 350, result.Score)
	assert.Equal(t, model.LevelB1, result.Level)
	assert.True(t, engine.VerifyResultHash(
		[]byte(env.cfg.ResultHashSecret),
		env.candidateID, result.Score, session.CreatedAt, result.ResultHash,
	))

	stored := env.sessions.sessions[session.ID]
	assert.Equal(t, model.SessionStatusCompleted, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 350, *stored.Score)
	assert.NotEmpty(t, stored.Breakdown)

	cand := env.candidates.candidates[env.candidateID]
	require.NotNil(t, cand.CurrentLevel)
	assert.Equal(t, model.LevelB1, *cand.CurrentLevel)
	require.Len(t, env.notifier.events, 1)
	assert.Equal(t, model.LevelB1, env.notifier.events[0].NewLevel)
}

func TestCompleteIsFinal(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "grammar"), true)

	first, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	require.NoError(t, err)

	// Add more answers and try again: the stored result must not move.
	env.answers.seed(session.ID, poolQuestion(model.LevelB2, "vocabulary"), true)
	_, err = env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)

	stored := env.sessions.sessions[session.ID]
	require.NotNil(t, stored.Score)
	assert.Equal(t, first.Score, *stored.Score)
}

func TestCompleteDebitsSponsorCredits(t *testing.T) {
	env := newSessionEnv(t)
	orgID := uuid.New()
	env.credits.balances[orgID] = 3
	session := env.started(t, &orgID, model.ExamKindExam)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "grammar"), true)

	_, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, env.credits.debits)
	assert.Equal(t, 2, env.credits.balances[orgID])
}

func TestCompleteAbortsOnInsufficientCredits(t *testing.T) {
	env := newSessionEnv(t)
	orgID := uuid.New()
	env.credits.err = repository.ErrInsufficientCredits
	session := env.started(t, &orgID, model.ExamKindExam)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "grammar"), true)

	_, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	assert.ErrorIs(t, err, repository.ErrInsufficientCredits)

	// The session stays STARTED and unscored, so completion can be retried.
	stored := env.sessions.sessions[session.ID]
	assert.Equal(t, model.SessionStatusStarted, stored.Status)
	assert.Nil(t, stored.Score)
	assert.Empty(t, env.notifier.events)
}

func TestCompleteWithoutSponsorSkipsDebit(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "grammar"), true)

	_, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	require.NoError(t, err)
	assert.Zero(t, env.credits.debits)
}

func TestCompleteMergesClientWarnings(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "grammar"), true)
	env.sessions.sessions[session.ID].IntegrityScore = 1

	_, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 4)
	require.NoError(t, err)

	stored := env.sessions.sessions[session.ID]
	assert.Equal(t, 4, stored.IntegrityScore)
	assert.Equal(t, model.IntegrityStatusSuspicious, stored.IntegrityStatus)
}

func TestCompleteRequiresStartedSession(t *testing.T) {
	env := newSessionEnv(t)
	session, err := env.svc.Create(context.Background(), env.candidateID, nil, model.ExamKindExam)
	require.NoError(t, err)

	_, err = env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	assert.ErrorIs(t, err, ErrSessionNotStarted)
}

func TestVerifyResult(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)
	env.answers.seed(session.ID, poolQuestion(model.LevelB1, "grammar"), true)

	_, err := env.svc.Complete(context.Background(), env.candidateID, session.ID, 0)
	require.NoError(t, err)

	verdict, err := env.svc.VerifyResult(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, verdict.Valid)

	// Tamper with the stored score: the hash no longer matches.
	tampered := *env.sessions.sessions[session.ID].Score + 100
	env.sessions.sessions[session.ID].Score = &tampered

	verdict, err = env.svc.VerifyResult(context.Background(), session.ID)
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
}

func TestVerifyResultRequiresCompletion(t *testing.T) {
	env := newSessionEnv(t)
	session := env.started(t, nil, model.ExamKindExam)

	_, err := env.svc.VerifyResult(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrResultNotAvailable)
}

func TestVerifyResultUnknownSession(t *testing.T) {
	env := newSessionEnv(t)

	_, err := env.svc.VerifyResult(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

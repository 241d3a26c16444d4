package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingua-prep/adaptive-exam-engine/internal/config"
	"github.com/lingua-prep/adaptive-exam-engine/internal/engine"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/lingua-prep/adaptive-exam-engine/internal/notify"
	"github.com/rs/zerolog"
)

// SessionService owns the exam session lifecycle: create, start, resume
// state, and completion. All state is reconstructed from persisted records on
// every call — no in-process session object survives across requests.
type SessionService struct {
	cfg        *config.Config
	sessions   SessionStore
	answers    AnswerStore
	candidates CandidateStore
	credits    CreditStore
	notifier   LevelNotifier
	log        zerolog.Logger
	now        func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	sessions SessionStore,
	answers AnswerStore,
	candidates CandidateStore,
	credits CreditStore,
	notifier LevelNotifier,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		cfg:        cfg,
		sessions:   sessions,
		answers:    answers,
		candidates: candidates,
		credits:    credits,
		notifier:   notifier,
		log:        log.With().Str("component", "session_service").Logger(),
		now:        time.Now,
	}
}

// Create allocates a session in ASSIGNED state. Nothing is charged at
// creation; the completion cost is debited only when the exam finishes.
func (s *SessionService) Create(ctx context.Context, candidateID uuid.UUID, orgID *uuid.UUID, kind model.ExamKind) (*model.ExamSession, error) {
	session := &model.ExamSession{
		CandidateID:     candidateID,
		OrganizationID:  orgID,
		Kind:            kind,
		Status:          model.SessionStatusAssigned,
		DurationMinutes: kind.DurationMinutes(),
		IntegrityStatus: model.IntegrityStatusValid,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// Start transitions ASSIGNED → STARTED and stamps startedAt. Calling it on an
// already STARTED session returns the current state unchanged, so reconnect
// and resume are safe to call repeatedly.
func (s *SessionService) Start(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := s.ownedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		return nil, ErrSessionAlreadyCompleted
	case model.SessionStatusCheatingDetected:
		return nil, ErrSessionTerminated
	case model.SessionStatusStarted:
		return session, nil
	}

	startedAt := s.now()
	rows, err := s.sessions.Start(ctx, sessionID, startedAt)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if rows == 0 {
		// Lost a race with another start call; the stored row wins.
		return s.ownedSession(ctx, candidateID, sessionID)
	}

	session.Status = model.SessionStatusStarted
	session.StartedAt = &startedAt
	return session, nil
}

// List returns the candidate's session history, most recent first.
func (s *SessionService) List(ctx context.Context, candidateID uuid.UUID) ([]model.ExamSession, error) {
	sessions, err := s.sessions.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// SessionState is the client-facing resume payload.
type SessionState struct {
	Status               model.SessionStatus          `json:"status"`
	CurrentIndex         int                          `json:"current_index"`
	Questions            []model.QuestionForCandidate `json:"questions"`
	Answers              map[string]string            `json:"answers"`
	TimeRemainingSeconds int                          `json:"time_remaining_seconds"`
}

// State reconstructs the resume payload. The served-question list is a view
// over the answer ledger, and remaining time is recomputed from startedAt
// against the wall clock — never a ticking server-side counter — so sessions
// survive process restarts and client reconnects.
func (s *SessionService) State(ctx context.Context, candidateID, sessionID uuid.UUID) (*SessionState, error) {
	session, err := s.ownedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionStatusCheatingDetected {
		return nil, ErrSessionTerminated
	}

	ledger, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	state := &SessionState{
		Status:    session.Status,
		Questions: make([]model.QuestionForCandidate, 0, len(ledger)),
		Answers:   make(map[string]string, len(ledger)),
	}
	for _, entry := range ledger {
		state.Questions = append(state.Questions, entry.Question)
		state.Answers[entry.QuestionID.String()] = entry.SelectedOption
		if entry.Submitted {
			state.CurrentIndex++
		}
	}

	state.TimeRemainingSeconds = s.timeRemaining(session)
	return state, nil
}

func (s *SessionService) timeRemaining(session *model.ExamSession) int {
	total := session.DurationMinutes * 60
	if session.StartedAt == nil {
		return total
	}
	elapsed := int(s.now().Sub(*session.StartedAt).Seconds())
	remaining := total - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CompletionResult is the scoring payload returned on completion.
type CompletionResult struct {
	Score      int              `json:"score"`
	Level      model.Level      `json:"level"`
	ResultHash string           `json:"result_hash"`
	Breakdown  engine.Breakdown `json:"breakdown"`
}

// Complete finalizes a session, whether the sequencer signaled termination or
// the candidate forced completion. Organization-sponsored sessions debit the
// fixed completion cost first; an insufficient balance aborts the whole
// operation with the session left STARTED so it can be retried.
func (s *SessionService) Complete(ctx context.Context, candidateID, sessionID uuid.UUID, warningsCount int) (*CompletionResult, error) {
	session, err := s.ownedSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case model.SessionStatusCompleted:
		return nil, ErrSessionAlreadyCompleted
	case model.SessionStatusCheatingDetected:
		return nil, ErrSessionTerminated
	case model.SessionStatusAssigned:
		return nil, ErrSessionNotStarted
	}

	ledger, err := s.answers.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	result := engine.ScoreAttempt(attemptHistory(ledger))

	integrityScore := session.IntegrityScore
	if warningsCount > integrityScore {
		integrityScore = warningsCount
	}
	integrityStatus := engine.IntegrityStatusFor(integrityScore)

	if session.OrganizationID != nil {
		if err := s.credits.DebitCompletion(ctx, *session.OrganizationID, sessionID, s.cfg.CompletionCreditCost); err != nil {
			return nil, fmt.Errorf("debit completion: %w", err)
		}
	}

	resultHash := engine.ResultHash([]byte(s.cfg.ResultHashSecret), candidateID, result.Score, session.CreatedAt)

	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}

	rows, err := s.sessions.Complete(ctx, sessionID,
		result.Score, result.Level, integrityScore, integrityStatus,
		breakdown, resultHash, s.now())
	if err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}
	if rows == 0 {
		return nil, ErrSessionAlreadyCompleted
	}

	s.updateCandidateLevel(ctx, candidateID, sessionID, result)

	return &CompletionResult{
		Score:      result.Score,
		Level:      result.Level,
		ResultHash: resultHash,
		Breakdown:  result.Breakdown,
	}, nil
}

// updateCandidateLevel stamps the new proficiency tag on the profile and
// dispatches a level-change notification. Both are fire-and-forget relative
// to completion: failures are logged, never propagated.
func (s *SessionService) updateCandidateLevel(ctx context.Context, candidateID, sessionID uuid.UUID, result engine.Result) {
	cand, err := s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		s.log.Error().Err(err).Str("candidate_id", candidateID.String()).Msg("Load candidate for level update failed")
		return
	}

	previous := cand.CurrentLevel
	if err := s.candidates.UpdateLevel(ctx, candidateID, result.Level); err != nil {
		s.log.Error().Err(err).Str("candidate_id", candidateID.String()).Msg("Update candidate level failed")
		return
	}

	if previous != nil && *previous == result.Level {
		return
	}

	event := notify.LevelChange{
		CandidateID:   candidateID,
		SessionID:     sessionID,
		PreviousLevel: previous,
		NewLevel:      result.Level,
		Score:         result.Score,
		OccurredAt:    s.now(),
	}
	if err := s.notifier.EnqueueLevelChange(ctx, event); err != nil {
		s.log.Error().Err(err).Str("candidate_id", candidateID.String()).Msg("Level change dispatch failed")
	}
}

// VerificationResult is the outcome of re-deriving a result hash.
type VerificationResult struct {
	Valid bool        `json:"valid"`
	Score int         `json:"score"`
	Level model.Level `json:"level"`
}

// VerifyResult recomputes the result hash from stored facts and compares it
// to the stored digest. Anyone holding a session ID can check that the
// reported score/level pair was not altered post-hoc.
func (s *SessionService) VerifyResult(ctx context.Context, sessionID uuid.UUID) (*VerificationResult, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status != model.SessionStatusCompleted || session.Score == nil || session.ResultHash == nil {
		return nil, ErrResultNotAvailable
	}

	valid := engine.VerifyResultHash(
		[]byte(s.cfg.ResultHashSecret),
		session.CandidateID, *session.Score, session.CreatedAt,
		*session.ResultHash,
	)

	return &VerificationResult{
		Valid: valid,
		Score: *session.Score,
		Level: *session.EstimatedLevel,
	}, nil
}

// ownedSession loads a session and checks candidate ownership.
func (s *SessionService) ownedSession(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	return ownedSession(ctx, s.sessions, candidateID, sessionID)
}

func ownedSession(ctx context.Context, sessions SessionStore, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.CandidateID != candidateID {
		return nil, ErrNotSessionOwner
	}
	return session, nil
}

// attemptHistory maps submitted ledger entries onto engine items. Autosaved
// drafts never reach the sequencer or the scoring engine.
func attemptHistory(ledger []model.AnsweredQuestion) []engine.AttemptItem {
	history := make([]engine.AttemptItem, 0, len(ledger))
	for _, entry := range ledger {
		if !entry.Submitted {
			continue
		}
		history = append(history, engine.AttemptItem{
			QuestionID: entry.QuestionID,
			Level:      entry.Question.Level,
			Topic:      entry.Question.Topic,
			Correct:    entry.IsCorrect,
		})
	}
	return history
}

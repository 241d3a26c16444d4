package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingua-prep/adaptive-exam-engine/internal/engine"
	"github.com/lingua-prep/adaptive-exam-engine/internal/grading"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/rs/zerolog"
)

// gradingUnavailableFeedback is stored when the AI grading path fails; the
// answer is saved anyway so the exam flow never stalls on the grader.
const gradingUnavailableFeedback = "Automatic grading was unavailable. Your answer was saved and will be reviewed later."

// FlowService drives the adaptive question flow: next-question selection,
// answer submission, and autosave. Sequencing decisions live in the engine
// package; this service feeds it the persisted ledger and performs lookups.
type FlowService struct {
	sessions  SessionStore
	answers   AnswerStore
	questions QuestionStore
	grader    grading.Grader
	log       zerolog.Logger
}

// NewFlowService creates a new FlowService. grader may be nil when no
// grading backend is configured; spoken answers then save ungraded.
func NewFlowService(
	sessions SessionStore,
	answers AnswerStore,
	questions QuestionStore,
	grader grading.Grader,
	log zerolog.Logger,
) *FlowService {
	return &FlowService{
		sessions:  sessions,
		answers:   answers,
		questions: questions,
		grader:    grader,
		log:       log.With().Str("component", "flow_service").Logger(),
	}
}

// NextQuestionResult is either the next question to serve or a termination
// signal with its reason.
type NextQuestionResult struct {
	Finished bool                        `json:"finished"`
	Reason   engine.TerminationReason    `json:"reason,omitempty"`
	Question *model.QuestionForCandidate `json:"question,omitempty"`
}

// NextQuestion returns the next question for a live session, or the
// termination reason. Pure read: nothing is recorded here.
func (s *FlowService) NextQuestion(ctx context.Context, candidateID, sessionID uuid.UUID) (*NextQuestionResult, error) {
	session, err := s.liveSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.nextForSession(ctx, session)
}

func (s *FlowService) nextForSession(ctx context.Context, session *model.ExamSession) (*NextQuestionResult, error) {
	ledger, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	history := attemptHistory(ledger)

	if reason, done := engine.Terminated(history); done {
		return &NextQuestionResult{Finished: true, Reason: reason}, nil
	}

	target := engine.NextTarget(history)
	question, err := s.questions.FindNext(ctx, session.OrganizationID, target.Level, target.AvoidTopic, target.ExcludeIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Exhausted content pool: a normal termination, not an error.
			return &NextQuestionResult{Finished: true, Reason: engine.ReasonNoMoreQuestions}, nil
		}
		return nil, fmt.Errorf("find next question: %w", err)
	}

	return &NextQuestionResult{Question: question.ForCandidate()}, nil
}

// SubmitAnswer records a committed answer — computing correctness first —
// and returns the next-question result.
func (s *FlowService) SubmitAnswer(ctx context.Context, candidateID, sessionID, questionID uuid.UUID, selectedOption string) (*NextQuestionResult, error) {
	session, err := s.liveSession(ctx, candidateID, sessionID)
	if err != nil {
		return nil, err
	}

	question, err := s.scopedQuestion(ctx, session, questionID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{
		SessionID:      sessionID,
		QuestionID:     questionID,
		SelectedOption: selectedOption,
		Submitted:      true,
	}
	s.evaluate(ctx, question, selectedOption, answer)

	if err := s.answers.Upsert(ctx, answer); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}

	return s.nextForSession(ctx, session)
}

// Autosave upserts the draft answer without computing correctness or
// advancing the sequencer. Keyed by (session, question), so repeating it
// overwrites rather than duplicates.
func (s *FlowService) Autosave(ctx context.Context, candidateID, sessionID, questionID uuid.UUID, selectedOption string) error {
	session, err := s.liveSession(ctx, candidateID, sessionID)
	if err != nil {
		return err
	}

	if _, err := s.scopedQuestion(ctx, session, questionID); err != nil {
		return err
	}

	answer := &model.Answer{
		SessionID:      sessionID,
		QuestionID:     questionID,
		SelectedOption: selectedOption,
	}
	if err := s.answers.Upsert(ctx, answer); err != nil {
		return fmt.Errorf("autosave answer: %w", err)
	}
	return nil
}

// evaluate computes correctness in place. Spoken and free-response items go
// through the AI grader; a grader failure degrades to an ungraded save with
// explanatory feedback rather than failing the submission.
func (s *FlowService) evaluate(ctx context.Context, question *model.Question, selectedOption string, answer *model.Answer) {
	if !question.IsRecording {
		answer.IsCorrect = strings.TrimSpace(selectedOption) == strings.TrimSpace(question.CorrectOption)
		return
	}

	if s.grader == nil {
		feedback := gradingUnavailableFeedback
		answer.Feedback = &feedback
		return
	}

	grade, err := s.grader.GradeResponse(ctx, question, selectedOption)
	if err != nil {
		s.log.Warn().Err(err).
			Str("question_id", question.ID.String()).
			Msg("AI grading failed, saving ungraded")
		feedback := gradingUnavailableFeedback
		answer.Feedback = &feedback
		return
	}

	answer.IsCorrect = grade.Correct
	answer.AIScore = &grade.Score
	answer.Feedback = &grade.Feedback
}

// liveSession loads an owned session and requires it to be STARTED.
func (s *FlowService) liveSession(ctx context.Context, candidateID, sessionID uuid.UUID) (*model.ExamSession, error) {
	session, err := ownedSession(ctx, s.sessions, candidateID, sessionID)
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
	return session, nil
}

func (s *FlowService) scopedQuestion(ctx context.Context, session *model.ExamSession, questionID uuid.UUID) (*model.Question, error) {
	question, err := s.questions.GetByID(ctx, session.OrganizationID, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return question, nil
}

package engine

import (
	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// ServableLevels is the ordered scale the sequencer walks. C2 is a scoring
// outcome only, never a servable item level.
var ServableLevels = []model.Level{
	model.LevelA1, model.LevelA2, model.LevelB1, model.LevelB2, model.LevelC1,
}

// InitialLevel is used for the very first question of a session.
const InitialLevel = model.LevelB1

// MaxQuestions caps the number of answered questions per session.
const MaxQuestions = 15

// StabilizationWindow is the run of consecutive correct same-level answers
// that ends probing early.
const StabilizationWindow = 3

// TerminationReason explains why the sequencer stopped serving questions.
type TerminationReason string

const (
	ReasonMaxQuestions    TerminationReason = "MAX_QUESTIONS_REACHED"
	ReasonLevelStabilized TerminationReason = "LEVEL_STABILIZED"
	ReasonNoMoreQuestions TerminationReason = "NO_MORE_QUESTIONS"
)

// AttemptItem is one submitted answer joined with the question facts the
// engine cares about, ordered oldest first.
type AttemptItem struct {
	QuestionID uuid.UUID
	Level      model.Level
	Topic      string
	Correct    bool
}

// Target describes the next question the caller should look up.
type Target struct {
	Level model.Level
	// AvoidTopic is the previous question's topic; the lookup should prefer a
	// different topic and fall back to this one only when nothing else fits.
	AvoidTopic string
	// ExcludeIDs are questions already answered in this session.
	ExcludeIDs []uuid.UUID
}

// Terminated checks the history-only stop conditions, question cap first.
// Pool exhaustion (NO_MORE_QUESTIONS) is the caller's to detect after the
// repository lookup comes back empty.
func Terminated(history []AttemptItem) (TerminationReason, bool) {
	if len(history) >= MaxQuestions {
		return ReasonMaxQuestions, true
	}
	if stabilized(history) {
		return ReasonLevelStabilized, true
	}
	return "", false
}

// stabilized reports whether the most recent StabilizationWindow answers are
// all correct and all target the same level. The candidate has plateaued with
// full confidence; probing upward adds nothing.
func stabilized(history []AttemptItem) bool {
	if len(history) < StabilizationWindow {
		return false
	}
	recent := history[len(history)-StabilizationWindow:]
	level := recent[0].Level
	for _, item := range recent {
		if !item.Correct || item.Level != level {
			return false
		}
	}
	return true
}

// NextTarget computes the level and topic preference for the next question.
// Correct moves one step up the scale, incorrect one step down, both clamped.
// Call Terminated first; NextTarget assumes the session is still live.
func NextTarget(history []AttemptItem) Target {
	if len(history) == 0 {
		return Target{Level: InitialLevel}
	}

	last := history[len(history)-1]
	level := last.Level
	if last.Correct {
		level = stepUp(level)
	} else {
		level = stepDown(level)
	}

	exclude := make([]uuid.UUID, 0, len(history))
	for _, item := range history {
		exclude = append(exclude, item.QuestionID)
	}

	return Target{
		Level:      level,
		AvoidTopic: last.Topic,
		ExcludeIDs: exclude,
	}
}

func stepUp(l model.Level) model.Level {
	for i, s := range ServableLevels {
		if s == l {
			if i == len(ServableLevels)-1 {
				return l
			}
			return ServableLevels[i+1]
		}
	}
	return InitialLevel
}

func stepDown(l model.Level) model.Level {
	for i, s := range ServableLevels {
		if s == l {
			if i == 0 {
				return l
			}
			return ServableLevels[i-1]
		}
	}
	return InitialLevel
}

package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

func item(level model.Level, topic string, correct bool) AttemptItem {
	return AttemptItem{
		QuestionID: uuid.New(),
		Level:      level,
		Topic:      topic,
		Correct:    correct,
	}
}

func TestNextTargetFirstQuestion(t *testing.T) {
	target := NextTarget(nil)
	if target.Level != model.LevelB1 {
		t.Fatalf("first question level = %s, want B1", target.Level)
	}
	if target.AvoidTopic != "" || len(target.ExcludeIDs) != 0 {
		t.Fatalf("first target should carry no topic or exclusions: %+v", target)
	}
}

func TestNextTargetTransitions(t *testing.T) {
	tests := []struct {
		name string
		last AttemptItem
		want model.Level
	}{
		{"correct moves up", item(model.LevelB1, "grammar", true), model.LevelB2},
		{"incorrect moves down", item(model.LevelB1, "grammar", false), model.LevelA2},
		{"correct capped at C1", item(model.LevelC1, "listening", true), model.LevelC1},
		{"incorrect floored at A1", item(model.LevelA1, "listening", false), model.LevelA1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextTarget([]AttemptItem{tt.last})
			if got.Level != tt.want {
				t.Errorf("NextTarget level = %s, want %s", got.Level, tt.want)
			}
			if got.AvoidTopic != tt.last.Topic {
				t.Errorf("AvoidTopic = %q, want %q", got.AvoidTopic, tt.last.Topic)
			}
		})
	}
}

func TestNextTargetLevelMonotonicity(t *testing.T) {
	// A correct answer never decreases the next level; an incorrect answer
	// never increases it. Checked across the whole servable scale.
	for _, level := range ServableLevels {
		up := NextTarget([]AttemptItem{item(level, "x", true)}).Level
		down := NextTarget([]AttemptItem{item(level, "x", false)}).Level
		if levelIndex(up) < levelIndex(level) {
			t.Errorf("correct at %s decreased to %s", level, up)
		}
		if levelIndex(down) > levelIndex(level) {
			t.Errorf("incorrect at %s increased to %s", level, down)
		}
	}
}

func levelIndex(l model.Level) int {
	for i, s := range ServableLevels {
		if s == l {
			return i
		}
	}
	return -1
}

func TestNextTargetExcludesAnswered(t *testing.T) {
	history := []AttemptItem{
		item(model.LevelB1, "grammar", true),
		item(model.LevelB2, "listening", false),
	}
	target := NextTarget(history)
	if len(target.ExcludeIDs) != 2 {
		t.Fatalf("ExcludeIDs len = %d, want 2", len(target.ExcludeIDs))
	}
	for i, h := range history {
		if target.ExcludeIDs[i] != h.QuestionID {
			t.Errorf("ExcludeIDs[%d] = %s, want %s", i, target.ExcludeIDs[i], h.QuestionID)
		}
	}
}

func TestTerminatedMaxQuestions(t *testing.T) {
	// Any correctness pattern terminates once 15 answers exist.
	history := make([]AttemptItem, 0, MaxQuestions)
	for i := 0; i < MaxQuestions; i++ {
		history = append(history, item(model.LevelB1, "grammar", i%2 == 0))
	}

	reason, done := Terminated(history)
	if !done || reason != ReasonMaxQuestions {
		t.Fatalf("Terminated = (%s, %t), want (MAX_QUESTIONS_REACHED, true)", reason, done)
	}
}

func TestTerminatedLevelStabilized(t *testing.T) {
	history := []AttemptItem{
		item(model.LevelC1, "grammar", true),
		item(model.LevelC1, "listening", true),
		item(model.LevelC1, "reading", true),
	}

	reason, done := Terminated(history)
	if !done || reason != ReasonLevelStabilized {
		t.Fatalf("Terminated = (%s, %t), want (LEVEL_STABILIZED, true)", reason, done)
	}
}

func TestTerminatedStabilizationWindowIsRecent(t *testing.T) {
	// Older answers are irrelevant; only the last three count.
	history := []AttemptItem{
		item(model.LevelA1, "grammar", false),
		item(model.LevelB2, "grammar", true),
		item(model.LevelB2, "listening", true),
		item(model.LevelB2, "reading", true),
	}

	reason, done := Terminated(history)
	if !done || reason != ReasonLevelStabilized {
		t.Fatalf("Terminated = (%s, %t), want (LEVEL_STABILIZED, true)", reason, done)
	}
}

func TestTerminatedNotStabilized(t *testing.T) {
	tests := []struct {
		name    string
		history []AttemptItem
	}{
		{
			"mixed levels",
			[]AttemptItem{
				item(model.LevelB1, "a", true),
				item(model.LevelB2, "b", true),
				item(model.LevelC1, "c", true),
			},
		},
		{
			"one incorrect",
			[]AttemptItem{
				item(model.LevelB2, "a", true),
				item(model.LevelB2, "b", false),
				item(model.LevelB2, "c", true),
			},
		},
		{
			"too short",
			[]AttemptItem{
				item(model.LevelB2, "a", true),
				item(model.LevelB2, "b", true),
			},
		},
		// Three consecutive incorrect answers do NOT stop early — the engine
		// deliberately keeps probing a struggling candidate downward.
		{
			"all incorrect same level",
			[]AttemptItem{
				item(model.LevelA1, "a", false),
				item(model.LevelA1, "b", false),
				item(model.LevelA1, "c", false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if reason, done := Terminated(tt.history); done {
				t.Errorf("Terminated = (%s, true), want no termination", reason)
			}
		})
	}
}

package engine

import (
	"strings"
	"testing"

	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

func TestScoreAttemptWeightedExample(t *testing.T) {
	// A1 correct (10) + B1 correct (30) over 10+30+40 answered:
	// round(40/80*699) = 350, which lands in the B1 band.
	history := []AttemptItem{
		item(model.LevelA1, "grammar", true),
		item(model.LevelB1, "listening", true),
		item(model.LevelB2, "grammar", false),
	}

	res := ScoreAttempt(history)
	if res.RawScore != 40 {
		t.Errorf("RawScore = %d, want 40", res.RawScore)
	}
	if res.MaxPossible != 80 {
		t.Errorf("MaxPossible = %d, want 80", res.MaxPossible)
	}
	if res.Score != 350 {
		t.Errorf("Score = %d, want 350", res.Score)
	}
	if res.Level != model.LevelB1 {
		t.Errorf("Level = %s, want B1", res.Level)
	}
}

func TestScoreAttemptDeterminism(t *testing.T) {
	history := []AttemptItem{
		item(model.LevelB1, "grammar", true),
		item(model.LevelB2, "listening", false),
		item(model.LevelB1, "reading", true),
	}

	first := ScoreAttempt(history)
	for i := 0; i < 10; i++ {
		if got := ScoreAttempt(history); got.Score != first.Score || got.Level != first.Level {
			t.Fatalf("run %d: score/level changed: %d/%s vs %d/%s",
				i, got.Score, got.Level, first.Score, first.Level)
		}
	}
}

func TestScoreAttemptEmpty(t *testing.T) {
	res := ScoreAttempt(nil)
	if res.Score != 0 {
		t.Errorf("Score = %d, want 0", res.Score)
	}
	if len(res.Breakdown.Skills) != 0 {
		t.Errorf("Skills = %v, want none", res.Breakdown.Skills)
	}
	if len(res.Breakdown.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want none", res.Breakdown.Recommendations)
	}
}

func TestLevelForScoreBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  model.Level
	}{
		{0, model.LevelA1},
		{199, model.LevelA1},
		{200, model.LevelA2},
		{299, model.LevelA2},
		{300, model.LevelB1},
		{400, model.LevelB2},
		{500, model.LevelC1},
		{599, model.LevelC1},
		{600, model.LevelC2},
		{699, model.LevelC2},
	}

	for _, tt := range tests {
		if got := LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestBreakdownGroupsByFreeFormSkill(t *testing.T) {
	// Skill tags are open strings; only tags with evidence appear.
	history := []AttemptItem{
		item(model.LevelB1, "compréhension orale", true),
		item(model.LevelB1, "grammar", false),
		item(model.LevelB2, "compréhension orale", true),
	}

	bd := ScoreAttempt(history).Breakdown
	if len(bd.Skills) != 2 {
		t.Fatalf("Skills len = %d, want 2", len(bd.Skills))
	}
	if bd.Skills[0].Skill != "compréhension orale" || bd.Skills[0].Answered != 2 {
		t.Errorf("first skill = %+v, want compréhension orale with 2 answers", bd.Skills[0])
	}
	if bd.Strongest != "compréhension orale" {
		t.Errorf("Strongest = %q", bd.Strongest)
	}
	if bd.Weakest != "grammar" {
		t.Errorf("Weakest = %q", bd.Weakest)
	}
}

func TestBreakdownSkillScoresAreIndependent(t *testing.T) {
	history := []AttemptItem{
		item(model.LevelB2, "listening", true),
		item(model.LevelB2, "listening", true),
		item(model.LevelA1, "grammar", false),
	}

	bd := ScoreAttempt(history).Breakdown
	for _, s := range bd.Skills {
		switch s.Skill {
		case "listening":
			if s.Score != 699 || s.Level != model.LevelC2 {
				t.Errorf("listening = %d/%s, want 699/C2", s.Score, s.Level)
			}
		case "grammar":
			if s.Score != 0 || s.Level != model.LevelA1 {
				t.Errorf("grammar = %d/%s, want 0/A1", s.Score, s.Level)
			}
		}
	}
}

func TestBreakdownTiesKeepEncounterOrder(t *testing.T) {
	history := []AttemptItem{
		item(model.LevelB1, "reading", true),
		item(model.LevelB1, "writing", true),
	}

	bd := ScoreAttempt(history).Breakdown
	if bd.Strongest != "reading" {
		t.Errorf("Strongest = %q, want reading (first encountered)", bd.Strongest)
	}
	if bd.Weakest != "reading" {
		t.Errorf("Weakest = %q, want reading (first encountered)", bd.Weakest)
	}
}

func TestRecommendationsThresholds(t *testing.T) {
	// reading 0% → reinforcement; writing 50% → keep practicing.
	history := []AttemptItem{
		item(model.LevelB1, "reading", false),
		item(model.LevelB1, "writing", true),
		item(model.LevelB1, "writing", false),
		item(model.LevelB1, "listening", true),
	}

	recs := ScoreAttempt(history).Breakdown.Recommendations
	if len(recs) != 2 {
		t.Fatalf("Recommendations = %v, want 2 entries", recs)
	}
	if !strings.Contains(recs[0], "reading") || !strings.Contains(recs[0], "reinforcement") {
		t.Errorf("recs[0] = %q", recs[0])
	}
	if !strings.Contains(recs[1], "writing") || !strings.Contains(recs[1], "practicing") {
		t.Errorf("recs[1] = %q", recs[1])
	}
}

func TestRecommendationsCongratulationWhenAllStrong(t *testing.T) {
	history := []AttemptItem{
		item(model.LevelB2, "reading", true),
		item(model.LevelB2, "writing", true),
	}

	recs := ScoreAttempt(history).Breakdown.Recommendations
	if len(recs) != 1 || !strings.Contains(recs[0], "next level") {
		t.Fatalf("Recommendations = %v, want single congratulation", recs)
	}
}

func TestRecommendationsCappedAtThree(t *testing.T) {
	var history []AttemptItem
	for _, skill := range []string{"a", "b", "c", "d", "e"} {
		history = append(history, item(model.LevelB1, skill, false))
	}

	recs := ScoreAttempt(history).Breakdown.Recommendations
	if len(recs) != 3 {
		t.Fatalf("Recommendations len = %d, want 3", len(recs))
	}
}

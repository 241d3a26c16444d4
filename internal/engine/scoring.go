package engine

import (
	"fmt"
	"math"

	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// ScoreCeiling is the top of the reporting scale, matching the target
// certification's 0–699 range.
const ScoreCeiling = 699

// levelWeights reward correct answers on harder questions over easier ones.
var levelWeights = map[model.Level]int{
	model.LevelA1: 10,
	model.LevelA2: 20,
	model.LevelB1: 30,
	model.LevelB2: 40,
	model.LevelC1: 50,
	model.LevelC2: 60,
}

// LevelWeight returns the point weight of a question level.
func LevelWeight(l model.Level) int {
	return levelWeights[l]
}

// LevelForScore maps a 0–699 score onto a CECRL band. Breakpoints are
// inclusive on the lower end of each band.
func LevelForScore(score int) model.Level {
	switch {
	case score < 200:
		return model.LevelA1
	case score < 300:
		return model.LevelA2
	case score < 400:
		return model.LevelB1
	case score < 500:
		return model.LevelB2
	case score < 600:
		return model.LevelC1
	default:
		return model.LevelC2
	}
}

// SkillReport is the per-skill slice of a breakdown.
type SkillReport struct {
	Skill       string      `json:"skill"`
	Answered    int         `json:"answered"`
	Correct     int         `json:"correct"`
	PercentGood float64     `json:"percent_correct"`
	Score       int         `json:"score"`
	Level       model.Level `json:"level"`
}

// Breakdown is the serialized per-skill analysis stored with the session.
type Breakdown struct {
	Skills          []SkillReport `json:"skills"`
	Strongest       string        `json:"strongest,omitempty"`
	Weakest         string        `json:"weakest,omitempty"`
	Recommendations []string      `json:"recommendations"`
}

// Result is the full calibrated outcome of an attempt.
type Result struct {
	RawScore    int
	MaxPossible int
	Score       int
	Level       model.Level
	Breakdown   Breakdown
}

// ScoreAttempt converts the full submitted answer history into a calibrated
// result. It is a pure function of the (level, topic, correct) sequence.
func ScoreAttempt(history []AttemptItem) Result {
	raw, max := weigh(history)

	res := Result{
		RawScore:    raw,
		MaxPossible: max,
		Score:       scale(raw, max),
	}
	res.Level = LevelForScore(res.Score)
	res.Breakdown = buildBreakdown(history)
	return res
}

// weigh sums correct and total weights. The denominator reflects the
// difficulty mix actually served, not a fixed blueprint.
func weigh(history []AttemptItem) (raw, max int) {
	for _, item := range history {
		w := levelWeights[item.Level]
		max += w
		if item.Correct {
			raw += w
		}
	}
	return raw, max
}

func scale(raw, max int) int {
	if max == 0 {
		return 0
	}
	return int(math.Round(float64(raw) / float64(max) * ScoreCeiling))
}

// buildBreakdown groups answers by free-form skill tag. Skills without
// answered questions simply never appear; level is undefined without evidence.
func buildBreakdown(history []AttemptItem) Breakdown {
	var order []string
	groups := make(map[string][]AttemptItem)
	for _, item := range history {
		if _, seen := groups[item.Topic]; !seen {
			order = append(order, item.Topic)
		}
		groups[item.Topic] = append(groups[item.Topic], item)
	}

	bd := Breakdown{Recommendations: []string{}}

	var strongest, weakest string
	var bestPct, worstPct float64
	for i, skill := range order {
		items := groups[skill]
		raw, max := weigh(items)
		correct := 0
		for _, item := range items {
			if item.Correct {
				correct++
			}
		}
		pct := float64(correct) / float64(len(items)) * 100

		score := scale(raw, max)
		bd.Skills = append(bd.Skills, SkillReport{
			Skill:       skill,
			Answered:    len(items),
			Correct:     correct,
			PercentGood: pct,
			Score:       score,
			Level:       LevelForScore(score),
		})

		// Ties break by encounter order: strict comparisons keep the first.
		if i == 0 || pct > bestPct {
			bestPct, strongest = pct, skill
		}
		if i == 0 || pct < worstPct {
			worstPct, weakest = pct, skill
		}
	}

	bd.Strongest = strongest
	bd.Weakest = weakest
	bd.Recommendations = recommendations(bd.Skills)
	return bd
}

// recommendations emits up to 3 messages: below 50% needs reinforcement,
// 50–70% keep practicing, and a single congratulation when nothing is weak.
func recommendations(skills []SkillReport) []string {
	recs := []string{}
	for _, s := range skills {
		if len(recs) == 3 {
			return recs
		}
		switch {
		case s.PercentGood < 50:
			recs = append(recs, fmt.Sprintf("Your %s skills need reinforcement. Focus your next study sessions there.", s.Skill))
		case s.PercentGood < 70:
			recs = append(recs, fmt.Sprintf("Keep practicing %s to consolidate your progress.", s.Skill))
		}
	}
	if len(recs) == 0 && len(skills) > 0 {
		recs = append(recs, "Great consistency across all skills. You are ready to prepare for the next level.")
	}
	return recs
}

package grading

import (
	"context"

	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

// Grade is the outcome of automatically grading a spoken or free-response
// answer.
type Grade struct {
	Correct  bool    `json:"correct"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Grader evaluates free-response and spoken answers. Implementations are
// awaited synchronously during answer submission; a failure must degrade to a
// saved answer, never reject the save.
type Grader interface {
	GradeResponse(ctx context.Context, question *model.Question, response string) (*Grade, error)
}

package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const graderSystemPrompt = `You are a certified CECRL language examiner. Grade the candidate's
response to the given question at the stated level. Respond with a single JSON
object and nothing else: {"correct": bool, "score": number between 0 and 1,
"feedback": "one or two sentences for the candidate"}. A response scoring 0.6
or above counts as correct.`

// OpenAIGrader grades free-response and spoken items through the OpenAI chat
// API. Spoken items arrive as a transcript or audio reference string.
type OpenAIGrader struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIGrader creates an OpenAIGrader. Returns an error when no API key
// is configured so the caller can fall back to ungraded saves.
func NewOpenAIGrader(apiKey, chatModel string, log zerolog.Logger) (*OpenAIGrader, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &OpenAIGrader{
		client: openai.NewClient(apiKey),
		model:  chatModel,
		log:    log.With().Str("component", "openai_grader").Logger(),
	}, nil
}

// GradeResponse submits the question and candidate response for grading and
// parses the structured verdict.
func (g *OpenAIGrader) GradeResponse(ctx context.Context, question *model.Question, response string) (*Grade, error) {
	prompt := fmt.Sprintf(
		"Level: %s\nSkill: %s\nQuestion: %s\nExpected answer (reference only): %s\nCandidate response: %s",
		question.Level, question.Topic, question.Text, question.CorrectOption, response,
	)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: graderSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("grader returned no choices")
	}

	grade, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	g.log.Debug().
		Str("question_id", question.ID.String()).
		Float64("score", grade.Score).
		Bool("correct", grade.Correct).
		Msg("Response graded")

	return grade, nil
}

// parseVerdict extracts the JSON verdict, tolerating markdown code fences
// some models wrap around JSON output.
func parseVerdict(content string) (*Grade, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var grade Grade
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &grade); err != nil {
		return nil, fmt.Errorf("parse grader verdict: %w", err)
	}
	return &grade, nil
}

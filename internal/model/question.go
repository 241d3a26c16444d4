package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Question is a single assessable item. Topic is a free-form skill tag chosen
// by content authors, not a closed enum.
type Question struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	Level          Level           `json:"level"`
	Topic          string          `json:"topic"`
	Text           string          `json:"text"`
	Options        json.RawMessage `json:"options"`
	CorrectOption  string          `json:"correct_option"`
	IsRecording    bool            `json:"is_recording"`
	AudioURL       *string         `json:"audio_url,omitempty"`
}

// QuestionForCandidate is a question stripped of the canonical answer,
// safe to send to exam clients.
type QuestionForCandidate struct {
	ID          uuid.UUID       `json:"id"`
	Level       Level           `json:"level"`
	Topic       string          `json:"topic"`
	Text        string          `json:"text"`
	Options     json.RawMessage `json:"options"`
	IsRecording bool            `json:"is_recording"`
	AudioURL    *string         `json:"audio_url,omitempty"`
}

// ForCandidate strips the canonical answer from a question.
func (q *Question) ForCandidate() *QuestionForCandidate {
	return &QuestionForCandidate{
		ID:          q.ID,
		Level:       q.Level,
		Topic:       q.Topic,
		Text:        q.Text,
		Options:     q.Options,
		IsRecording: q.IsRecording,
		AudioURL:    q.AudioURL,
	}
}

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExamKind distinguishes the session flavors, each with a fixed duration.
type ExamKind string

const (
	ExamKindExam       ExamKind = "EXAM"
	ExamKindDiagnostic ExamKind = "DIAGNOSTIC"
	ExamKindPractice   ExamKind = "PRACTICE"
)

// DurationMinutes returns the fixed session duration for the kind.
func (k ExamKind) DurationMinutes() int {
	switch k {
	case ExamKindDiagnostic:
		return 15
	default:
		return 60
	}
}

// SessionStatus enumerates exam session lifecycle states.
type SessionStatus string

const (
	SessionStatusAssigned         SessionStatus = "ASSIGNED"
	SessionStatusStarted          SessionStatus = "STARTED"
	SessionStatusCompleted        SessionStatus = "COMPLETED"
	SessionStatusCheatingDetected SessionStatus = "CHEATING_DETECTED"
)

// IntegrityStatus classifies a session by its accumulated violation count.
type IntegrityStatus string

const (
	IntegrityStatusValid      IntegrityStatus = "VALID"
	IntegrityStatusSuspicious IntegrityStatus = "SUSPICIOUS"
	IntegrityStatusFailed     IntegrityStatus = "FAILED"
)

// ExamSession represents one exam attempt by one candidate.
// Once Status is COMPLETED the result fields are immutable.
type ExamSession struct {
	ID              uuid.UUID       `json:"id"`
	CandidateID     uuid.UUID       `json:"candidate_id"`
	OrganizationID  *uuid.UUID      `json:"organization_id,omitempty"`
	Kind            ExamKind        `json:"exam_kind"`
	Status          SessionStatus   `json:"status"`
	DurationMinutes int             `json:"duration_minutes"`
	CreatedAt       time.Time       `json:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	Score           *int            `json:"score,omitempty"`
	EstimatedLevel  *Level          `json:"estimated_level,omitempty"`
	IntegrityScore  int             `json:"integrity_score"`
	IntegrityStatus IntegrityStatus `json:"integrity_status"`
	Breakdown       json.RawMessage `json:"breakdown,omitempty"`
	ResultHash      *string         `json:"result_hash,omitempty"`
}

// CreateSessionRequest is the payload for allocating a new exam session.
type CreateSessionRequest struct {
	ExamKind       string     `json:"exam_kind" binding:"required,oneof=EXAM DIAGNOSTIC PRACTICE"`
	OrganizationID *uuid.UUID `json:"organization_id" binding:"omitempty"`
}

// CompleteSessionRequest carries the client-side warning count accumulated
// during the attempt. The stored violation counter wins if it is higher.
type CompleteSessionRequest struct {
	WarningsCount int `json:"warnings_count" binding:"min=0"`
}

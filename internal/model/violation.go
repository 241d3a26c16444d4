package model

import (
	"time"

	"github.com/google/uuid"
)

// Violation is one externally detected suspicious-behavior event. The engine
// never classifies — it only counts and applies thresholds.
type Violation struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Kind       string    `json:"kind"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ReportViolationRequest is the payload from the client-side detector.
type ReportViolationRequest struct {
	Kind   string `json:"kind" binding:"required,max=64"`
	Detail string `json:"detail" binding:"omitempty,max=2048"`
}

// TerminateSessionRequest carries the violation list justifying an immediate
// cheating termination.
type TerminateSessionRequest struct {
	Violations []ReportViolationRequest `json:"violations" binding:"required,min=1,dive"`
}

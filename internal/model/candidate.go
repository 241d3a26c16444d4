package model

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is an exam taker. OrganizationID is nil for unaffiliated
// candidates (self-service accounts).
type Candidate struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	CurrentLevel   *Level     `json:"current_level,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// LoginRequest is the payload for candidate authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

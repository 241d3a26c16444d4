package service

import "errors"

// Domain errors surfaced to handlers, which map them onto stable response
// codes. No operation that returns one of these leaves a partial mutation.
var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrSessionNotFound         = errors.New("session not found")
	ErrNotSessionOwner         = errors.New("session does not belong to this candidate")
	ErrSessionNotStarted       = errors.New("session has not been started")
	ErrSessionAlreadyCompleted = errors.New("session is already completed")
	ErrSessionTerminated       = errors.New("session was terminated for cheating")
	ErrQuestionNotFound        = errors.New("question not found")
	ErrResultNotAvailable      = errors.New("session has no result to verify")
)

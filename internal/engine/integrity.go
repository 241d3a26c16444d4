package engine

import "github.com/lingua-prep/adaptive-exam-engine/internal/model"

// Violation thresholds. A saturating counter, not a classifier: the detector
// lives client-side and the engine only applies these cutoffs.
const (
	SuspiciousThreshold = 3
	TerminateThreshold  = 5
)

// IntegrityStatusFor maps an accumulated violation count onto a status.
func IntegrityStatusFor(count int) model.IntegrityStatus {
	switch {
	case count >= TerminateThreshold:
		return model.IntegrityStatusFailed
	case count >= SuspiciousThreshold:
		return model.IntegrityStatusSuspicious
	default:
		return model.IntegrityStatusValid
	}
}

// ShouldTerminate reports whether the caller must force-complete the session.
func ShouldTerminate(count int) bool {
	return count >= TerminateThreshold
}

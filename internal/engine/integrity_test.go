package engine

import (
	"testing"

	"github.com/lingua-prep/adaptive-exam-engine/internal/model"
)

func TestIntegrityStatusThresholds(t *testing.T) {
	tests := []struct {
		count int
		want  model.IntegrityStatus
	}{
		{0, model.IntegrityStatusValid},
		{2, model.IntegrityStatusValid},
		{3, model.IntegrityStatusSuspicious},
		{4, model.IntegrityStatusSuspicious},
		{5, model.IntegrityStatusFailed},
		{9, model.IntegrityStatusFailed},
	}

	for _, tt := range tests {
		if got := IntegrityStatusFor(tt.count); got != tt.want {
			t.Errorf("IntegrityStatusFor(%d) = %s, want %s", tt.count, got, tt.want)
		}
	}
}

func TestShouldTerminateFromFifthViolation(t *testing.T) {
	for count := 0; count < 5; count++ {
		if ShouldTerminate(count) {
			t.Errorf("ShouldTerminate(%d) = true, want false", count)
		}
	}
	for count := 5; count < 8; count++ {
		if !ShouldTerminate(count) {
			t.Errorf("ShouldTerminate(%d) = false, want true", count)
		}
	}
}

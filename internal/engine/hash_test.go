package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestResultHashRoundTrip(t *testing.T) {
	secret := []byte("test-signing-secret")
	candidateID := uuid.New()
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	hash := ResultHash(secret, candidateID, 512, createdAt)
	if hash == "" {
		t.Fatal("empty hash")
	}
	if !VerifyResultHash(secret, candidateID, 512, createdAt, hash) {
		t.Error("hash failed to verify against its own inputs")
	}
}

func TestResultHashDetectsTampering(t *testing.T) {
	secret := []byte("test-signing-secret")
	candidateID := uuid.New()
	createdAt := time.Now()

	hash := ResultHash(secret, candidateID, 512, createdAt)

	if VerifyResultHash(secret, candidateID, 513, createdAt, hash) {
		t.Error("verification passed with altered score")
	}
	if VerifyResultHash(secret, uuid.New(), 512, createdAt, hash) {
		t.Error("verification passed with altered candidate")
	}
	if VerifyResultHash([]byte("other-secret"), candidateID, 512, createdAt, hash) {
		t.Error("verification passed with wrong key")
	}
}

package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ResultHash binds a reported score to its candidate and the session creation
// timestamp with a keyed one-way digest. It is the only externally checkable
// proof that a score/level pair was not altered after the fact.
func ResultHash(secret []byte, candidateID uuid.UUID, score int, createdAt time.Time) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s|%d|%d", candidateID, score, createdAt.Unix())
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyResultHash recomputes the digest and compares in constant time.
func VerifyResultHash(secret []byte, candidateID uuid.UUID, score int, createdAt time.Time, hash string) bool {
	expected := ResultHash(secret, candidateID, score, createdAt)
	return hmac.Equal([]byte(expected), []byte(hash))
}

package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionIntegrityChannel returns the Redis PubSub channel carrying live
// violation events for proctor monitoring of a session.
func (r *CacheKeyStruct) SessionIntegrityChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:integrity", sessionID)
}

var CacheKey = NewCacheKeyStruct()

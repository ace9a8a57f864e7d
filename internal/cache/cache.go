package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the payload cache used by the gateway fetcher. Content-addressed
// payloads are immutable, so the surface is read and write only: entries are
// never invalidated, they simply expire.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
}

// CacheKey generates a cache key from a content identifier.
// Content-addressed payloads are immutable, so the identifier alone is a
// complete key regardless of which gateway served the bytes.
func CacheKey(contentID string) string {
	hash := sha256.Sum256([]byte(contentID))
	return "veritrail:v1:" + hex.EncodeToString(hash[:])
}

package cache

import (
	"time"
)

// CacheService is the cooldown cache used by the crawler to remember
// rate-limit blocks between page fetches (and, with memcache, between
// invocations).
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}

package cache

import (
	"time"
)

// Entry is a memoized fetch result together with its insertion time.
type Entry struct {
	// Data is the fetched response body.
	Data []byte `json:"data"`

	// StoredAt is when the entry was inserted.
	StoredAt time.Time `json:"stored_at"`
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.StoredAt)
}

// IsStale reports whether the entry is older than the given TTL. A stale
// entry is treated as absent on access.
func (e *Entry) IsStale(ttl time.Duration) bool {
	return e.Age() > ttl
}

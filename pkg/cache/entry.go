package cache

import (
	"encoding/json"
	"time"
)

// Entry represents a cached payload together with its write timestamp.
//
// The entry records only when it was stored; freshness is decided by the
// reader, which supplies a TTL at lookup time. The same stored value can
// be fresh for one caller and stale for another.
type Entry struct {
	// Data is the cached JSON value.
	Data json.RawMessage `json:"data"`

	// StoredAt is the write time in epoch milliseconds. Assigned by the
	// store at write time, never by the caller.
	StoredAt int64 `json:"localCacheTimestamp"`
}

// newEntry stamps data with the current time.
func newEntry(data json.RawMessage) *Entry {
	return &Entry{
		Data:     data,
		StoredAt: time.Now().UnixMilli(),
	}
}

// Time returns the write timestamp.
func (e *Entry) Time() time.Time {
	return time.UnixMilli(e.StoredAt)
}

// Age returns the time elapsed since the entry was written.
func (e *Entry) Age() time.Duration {
	return time.Since(e.Time())
}

// Expired reports whether the entry is older than the given TTL.
func (e *Entry) Expired(ttl time.Duration) bool {
	return e.Age() > ttl
}

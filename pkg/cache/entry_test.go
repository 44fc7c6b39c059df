package cache

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEntry_Expired(t *testing.T) {
	entry := &Entry{
		Data:     json.RawMessage(`{"v":1}`),
		StoredAt: time.Now().Add(-10 * time.Minute).UnixMilli(),
	}

	tests := []struct {
		name string
		ttl  time.Duration
		want bool
	}{
		{"fresh for a tolerant reader", 1 * time.Hour, false},
		{"stale for a strict reader", 1 * time.Minute, true},
		{"negative ttl is always stale", -1 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.Expired(tt.ttl); got != tt.want {
				t.Errorf("Expired(%v) = %v, want %v", tt.ttl, got, tt.want)
			}
		})
	}
}

func TestEntry_StampedAtWriteTime(t *testing.T) {
	before := time.Now()
	entry := newEntry(json.RawMessage(`"x"`))
	after := time.Now()

	if entry.Time().Before(before.Truncate(time.Millisecond)) || entry.Time().After(after) {
		t.Errorf("StoredAt %v outside [%v, %v]", entry.Time(), before, after)
	}
}

func TestEntry_WireFormat(t *testing.T) {
	entry := &Entry{Data: json.RawMessage(`{"a":1}`), StoredAt: 1700000000000}

	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(fields["data"]) != `{"a":1}` {
		t.Errorf(`data field = %s, want {"a":1}`, fields["data"])
	}
	if string(fields["localCacheTimestamp"]) != "1700000000000" {
		t.Errorf("localCacheTimestamp field = %s, want 1700000000000", fields["localCacheTimestamp"])
	}
}

package cache

import (
	"testing"
	"time"
)

func TestEntry_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		storedAt time.Time
		ttl      time.Duration
		want     bool
	}{
		{"fresh", time.Now(), time.Minute, false},
		{"just stored, zero ttl", time.Now().Add(-time.Millisecond), 0, true},
		{"older than ttl", time.Now().Add(-2 * time.Minute), time.Minute, true},
		{"within ttl", time.Now().Add(-30 * time.Second), time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Data: []byte("x"), StoredAt: tt.storedAt}
			if got := entry.IsStale(tt.ttl); got != tt.want {
				t.Errorf("IsStale(%v) = %v, want %v", tt.ttl, got, tt.want)
			}
		})
	}
}

func TestEntry_Age(t *testing.T) {
	entry := &Entry{StoredAt: time.Now().Add(-time.Second)}
	age := entry.Age()
	if age < time.Second || age > 2*time.Second {
		t.Errorf("Age() = %v, want about 1s", age)
	}
}

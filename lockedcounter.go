package rollingcounter

import (
	"iter"
	"sync"
	"time"
)

var _ Counter[string] = (*LockedCounter[string])(nil)

// LockedCounter is a RollingCounter safe for concurrent use: every operation
// runs under a mutex held for the duration of the call.
type LockedCounter[K comparable] struct {
	mu sync.Mutex
	c  *RollingCounter[K]
}

// NewLocked creates a new LockedCounter with the given time-to-live.
// It returns ErrInvalidTTL when ttl is negative.
func NewLocked[K comparable](ttl time.Duration, opts ...Option[K]) (*LockedCounter[K], error) {
	c, err := New(ttl, opts...)
	if err != nil {
		return nil, err
	}
	return &LockedCounter[K]{c: c}, nil
}

// Add records one occurrence of key at the current instant
func (l *LockedCounter[K]) Add(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Add(key)
}

// Count returns the number of live occurrences of key
func (l *LockedCounter[K]) Count(key K) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Count(key)
}

// Max returns the key with the highest live count, with the same tie-break
// as RollingCounter.Max
func (l *LockedCounter[K]) Max() (key K, count int64, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Max()
}

// Keys returns a snapshot of the keys with at least one live occurrence, in
// first-seen order. The snapshot is taken under the lock; iterating it does
// not block other operations.
func (l *LockedCounter[K]) Keys() iter.Seq[K] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Keys()
}

// Sweep removes expired occurrences from storage
func (l *LockedCounter[K]) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Sweep()
}

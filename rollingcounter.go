package rollingcounter

import (
	"iter"
	"slices"
	"time"
)

var _ Counter[string] = (*RollingCounter[string])(nil)

// event is one recorded occurrence of a key. Immutable once stored.
type event[K comparable] struct {
	key K
	at  time.Time
}

// RollingCounter counts occurrences per key, where each occurrence expires
// ttl after it was recorded. Expiry is evaluated lazily at query time; an
// occurrence is expired once its timestamp plus ttl is not after the current
// instant, so a ttl of zero expires every occurrence immediately.
//
// A RollingCounter is not safe for concurrent use; wrap it in a
// LockedCounter when multiple goroutines share one instance.
type RollingCounter[K comparable] struct {
	// ttl is how long a recorded occurrence stays visible to queries
	ttl   time.Duration
	clock Clock
	// events holds recorded occurrences in record order. Timestamps come
	// from the clock at Add time, so the slice is time-ordered and expired
	// events always form a prefix.
	events []event[K]
	// counts is the per-key count over events, kept in step by prune
	counts map[K]int64
}

type Option[K comparable] func(*RollingCounter[K]) error

// WithClock sets the clock the counter reads the current instant from
func WithClock[K comparable](clock Clock) Option[K] {
	return func(c *RollingCounter[K]) error {
		c.clock = clock
		return nil
	}
}

// New creates a new RollingCounter with the given time-to-live.
// It returns ErrInvalidTTL when ttl is negative.
func New[K comparable](ttl time.Duration, opts ...Option[K]) (*RollingCounter[K], error) {
	if ttl < 0 {
		return nil, ErrInvalidTTL
	}
	c := &RollingCounter[K]{
		ttl:    ttl,
		clock:  NewClock(),
		counts: make(map[K]int64),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add records one occurrence of key at the current instant
func (c *RollingCounter[K]) Add(key K) {
	c.events = append(c.events, event[K]{key: key, at: c.clock.Now()})
	c.counts[key]++
}

// Count returns the number of live occurrences of key as of the call
// instant. Unknown keys count zero.
func (c *RollingCounter[K]) Count(key K) int64 {
	c.prune(c.clock.Now())
	return c.counts[key]
}

// Max returns the key with the highest live count, breaking ties in favor of
// the key recorded first. ok is false when every occurrence has expired.
func (c *RollingCounter[K]) Max() (key K, count int64, ok bool) {
	c.prune(c.clock.Now())
	seen := make(map[K]struct{}, len(c.counts))
	for _, e := range c.events {
		if _, dup := seen[e.key]; dup {
			continue
		}
		seen[e.key] = struct{}{}
		if n := c.counts[e.key]; n > count {
			key, count, ok = e.key, n, true
		}
	}
	return key, count, ok
}

// Keys returns the keys with at least one live occurrence, in first-seen
// order. The sequence is a snapshot of the counter at call time; a later
// call re-evaluates expiry.
func (c *RollingCounter[K]) Keys() iter.Seq[K] {
	c.prune(c.clock.Now())
	keys := make([]K, 0, len(c.counts))
	seen := make(map[K]struct{}, len(c.counts))
	for _, e := range c.events {
		if _, dup := seen[e.key]; !dup {
			seen[e.key] = struct{}{}
			keys = append(keys, e.key)
		}
	}
	return func(yield func(K) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Sweep removes expired occurrences from storage. Lazy expiry keeps them
// inert but resident until the next query; call Sweep periodically to bound
// memory when queries are infrequent.
func (c *RollingCounter[K]) Sweep() {
	c.prune(c.clock.Now())
	c.events = slices.Clone(c.events)
}

// prune drops the expired prefix of events and settles counts
func (c *RollingCounter[K]) prune(now time.Time) {
	cutoff := now.Add(-c.ttl)
	i := 0
	for ; i < len(c.events); i++ {
		e := c.events[i]
		if e.at.After(cutoff) {
			break
		}
		if c.counts[e.key]--; c.counts[e.key] == 0 {
			delete(c.counts, e.key)
		}
	}
	c.events = c.events[i:]
}

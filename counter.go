// Package rollingcounter provides in-memory event counters whose recorded
// occurrences expire after a fixed time-to-live, so aggregate queries only
// ever reflect recent events.
package rollingcounter

import "errors"

// ErrInvalidTTL is returned by constructors when the time-to-live is negative.
var ErrInvalidTTL = errors.New("rollingcounter: ttl must not be negative")

// Counter is the surface shared by all counter implementations.
type Counter[K comparable] interface {
	// Add records one occurrence of key at the current instant
	Add(key K)
	// Count returns the number of live (non-expired) occurrences of key
	Count(key K) int64
}

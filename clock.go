package rollingcounter

import "time"

// Clock reports the current instant. Counters read it on every mutation and
// query, so substituting an implementation makes expiry deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// NewClock returns a Clock backed by the wall clock.
func NewClock() Clock {
	return systemClock{}
}

package rollingcounter

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

var _ Counter[string] = (*WindowCounter)(nil)

// WindowCounter is an approximate, allocation-bounded alternative to
// RollingCounter for sustained high event volumes. Instead of storing every
// occurrence it accumulates per-window buckets in a TTL cache and estimates
// the live count from the current and previous windows, so memory is bounded
// by the number of active keys rather than the event rate.
type WindowCounter struct {
	cache *ttlcache.Cache[string, *uint64]
	// windowLen is the length of the sliding window
	windowLen time.Duration
	clock     Clock
	// capacity is the maximum number of buckets to store in the cache
	capacity uint64
	// disableAutoDeleteExpired disables the automatic deletion of expired buckets
	disableAutoDeleteExpired bool
}

type WindowCounterOption func(*WindowCounter) error

// WindowCounterWithCapacity sets the maximum number of buckets to store in the cache
func WindowCounterWithCapacity(capacity uint64) WindowCounterOption {
	return func(c *WindowCounter) error {
		c.capacity = capacity
		return nil
	}
}

// WindowCounterWithClock sets the clock the counter reads the current instant from
func WindowCounterWithClock(clock Clock) WindowCounterOption {
	return func(c *WindowCounter) error {
		c.clock = clock
		return nil
	}
}

// WindowCounterDisableAutoDeleteExpired disables the automatic deletion of expired buckets
func WindowCounterDisableAutoDeleteExpired() WindowCounterOption {
	return func(c *WindowCounter) error {
		c.disableAutoDeleteExpired = true
		return nil
	}
}

// NewWindowCounter creates a new WindowCounter with the given window length.
// It returns ErrInvalidTTL when windowLen is not positive; bucketing needs a
// nonzero window to divide time by.
func NewWindowCounter(windowLen time.Duration, opts ...WindowCounterOption) (*WindowCounter, error) {
	if windowLen <= 0 {
		return nil, ErrInvalidTTL
	}
	c := &WindowCounter{
		windowLen: windowLen,
		clock:     NewClock(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	// keep the current and previous buckets alive
	ttlOpts := []ttlcache.Option[string, *uint64]{
		ttlcache.WithTTL[string, *uint64](windowLen * 2),
	}
	if c.capacity > 0 {
		ttlOpts = append(ttlOpts, ttlcache.WithCapacity[string, *uint64](c.capacity))
	}
	c.cache = ttlcache.New[string, *uint64](ttlOpts...)
	if !c.disableAutoDeleteExpired {
		go c.cache.Start()
	}
	return c, nil
}

// Add records one occurrence of key in the current window
func (c *WindowCounter) Add(key string) {
	window := c.clock.Now().Truncate(c.windowLen)
	zero := uint64(0)
	i, _ := c.cache.GetOrSet(bucketKey(key, window), &zero)
	atomic.AddUint64(i.Value(), 1)
}

// Count estimates the number of occurrences of key within the window ending
// at the call instant. The previous window's bucket is weighted by how much
// of it still overlaps the sliding window.
func (c *WindowCounter) Count(key string) int64 {
	now := c.clock.Now()
	currStart := now.Truncate(c.windowLen)
	curr := c.bucket(key, currStart)
	prev := c.bucket(key, currStart.Add(-c.windowLen))
	elapsed := float64(now.Sub(currStart)) / float64(c.windowLen)
	return curr + int64(float64(prev)*(1-elapsed))
}

func (c *WindowCounter) bucket(key string, window time.Time) int64 {
	i := c.cache.Get(bucketKey(key, window))
	if i == nil {
		return 0
	}
	return int64(*i.Value())
}

func bucketKey(key string, window time.Time) string {
	return fmt.Sprintf("%s-%d", key, window.UnixNano())
}

// DeleteExpired deletes expired buckets from the cache
func (c *WindowCounter) DeleteExpired() {
	c.cache.DeleteExpired()
}

// Stop stops the cache's automatic deletion of expired buckets
func (c *WindowCounter) Stop() {
	c.cache.Stop()
}

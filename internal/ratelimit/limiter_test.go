package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(window time.Duration, max int) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLimiter(window, max)
	l.now = clock.Now
	return l, clock
}

func TestLimiterAllowsUpToMaxRequests(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 5)

	for i := 0; i < 5; i++ {
		res := l.Check("1.2.3.4")
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 4-i, res.Remaining)
	}
}

func TestLimiterBlocksExcessRequests(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 5)

	for i := 0; i < 5; i++ {
		l.Check("1.2.3.4")
	}

	res := l.Check("1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	// Window frees up when the first request ages out
	assert.Equal(t, clock.Now().Add(time.Minute), res.ResetTime)
}

func TestLimiterAllowsAgainAfterWindowElapses(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 5)

	for i := 0; i < 6; i++ {
		l.Check("1.2.3.4")
	}
	assert.False(t, l.Check("1.2.3.4").Allowed)

	clock.Advance(time.Minute + time.Second)

	res := l.Check("1.2.3.4")
	assert.True(t, res.Allowed)
	assert.Equal(t, 4, res.Remaining)
}

func TestLimiterTracksIdentifiersIndependently(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 2)

	l.Check("a")
	l.Check("a")
	assert.False(t, l.Check("a").Allowed)
	assert.True(t, l.Check("b").Allowed)
}

func TestLimiterSlidingWindowPartialExpiry(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 2)

	l.Check("ip") // t=0
	clock.Advance(40 * time.Second)
	l.Check("ip") // t=40s
	assert.False(t, l.Check("ip").Allowed)

	// First event ages out at t=60s; the second is still inside the window.
	clock.Advance(25 * time.Second)
	res := l.Check("ip")
	assert.True(t, res.Allowed)
	assert.False(t, l.Check("ip").Allowed)
}

func TestLimiterPruneDropsIdleIdentifiers(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 5)

	l.Check("stale")
	l.Check("fresh")
	clock.Advance(2 * time.Minute)
	l.Check("fresh")

	l.Prune()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.events, "stale")
	assert.Contains(t, l.events, "fresh")
}

func TestLimiterZeroMaxDeniesEverything(t *testing.T) {
	l, clock := newTestLimiter(time.Minute, 0)

	res := l.Check("1.2.3.4")
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), res.ResetTime)

	// Still denied, still no panic, on repeat calls.
	assert.False(t, l.Check("1.2.3.4").Allowed)
}

func TestLimiterConcurrentChecks(t *testing.T) {
	l, _ := newTestLimiter(time.Minute, 50)

	var wg sync.WaitGroup
	allowed := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed <- l.Check("shared").Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	count := 0
	for ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 50, count)
}

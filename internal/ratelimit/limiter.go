// Package ratelimit implements a sliding-window request counter keyed by an
// arbitrary identifier (client IP, account email). State is process-local;
// running more than one node requires moving this behind an external store.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result is the outcome of a single limiter check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time // when the oldest counted event leaves the window
}

// Limiter counts events per identifier within a trailing time window.
// Safe for concurrent use.
type Limiter struct {
	mu          sync.Mutex
	window      time.Duration
	maxRequests int
	events      map[string][]time.Time

	now func() time.Time // overridable for tests
}

// NewLimiter creates a limiter allowing maxRequests events per identifier
// within the trailing window.
func NewLimiter(window time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		window:      window,
		maxRequests: maxRequests,
		events:      make(map[string][]time.Time),
		now:         time.Now,
	}
}

// Check records an event for identifier if the window has room. Timestamps
// older than the window are purged lazily on every call. Check never fails;
// a denied result carries Remaining=0 and the time at which capacity frees up.
func (l *Limiter) Check(identifier string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	timestamps := l.events[identifier]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	// maxRequests <= 0 means the endpoint is closed; deny without recording.
	if l.maxRequests <= 0 || len(kept) >= l.maxRequests {
		l.events[identifier] = kept
		reset := now.Add(l.window)
		if len(kept) > 0 {
			reset = kept[0].Add(l.window)
		}
		return Result{
			Allowed:   false,
			Remaining: 0,
			ResetTime: reset,
		}
	}

	kept = append(kept, now)
	l.events[identifier] = kept

	return Result{
		Allowed:   true,
		Remaining: l.maxRequests - len(kept),
		ResetTime: kept[0].Add(l.window),
	}
}

// Window returns the limiter's window size.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Prune drops identifiers whose every recorded event has aged out, bounding
// memory for one-off visitors.
func (l *Limiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for identifier, timestamps := range l.events {
		live := false
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(l.events, identifier)
		}
	}
}

// Start runs periodic pruning, once per window, until ctx is cancelled.
func (l *Limiter) Start(ctx context.Context) {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Prune()
		}
	}
}

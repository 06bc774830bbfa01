package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// LockoutConfig holds the login throttle parameters.
type LockoutConfig struct {
	MaxAttempts     int           // failed attempts before a hard lockout
	LockoutDuration time.Duration // how long the lockout lasts
	BackoffBase     time.Duration // response delay after the first failure
	BackoffCap      time.Duration // ceiling on the response delay
}

// DefaultLockoutConfig returns the standard throttle parameters: 5 attempts,
// 15 minute lockout, 1s backoff doubling up to 10s.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		BackoffBase:     1 * time.Second,
		BackoffCap:      10 * time.Second,
	}
}

type attemptRecord struct {
	count       int
	lastFailure time.Time
}

// LockoutGuard tracks failed login attempts per normalized email and
// enforces timed lockouts. State is process-local and advisory: a restart
// clears all lockouts. The guard additionally imposes a response delay that
// doubles with each failure, so online guessing gets progressively more
// expensive even before the hard lockout triggers.
//
// Counts are incremented under the lock before the backoff delay is awaited
// outside it, so concurrent failures for the same account never under-count.
type LockoutGuard struct {
	mu      sync.Mutex
	config  LockoutConfig
	records map[string]*attemptRecord
	logger  *slog.Logger

	now func() time.Time // overridable for tests
}

// NewLockoutGuard creates a guard with the given configuration.
func NewLockoutGuard(config LockoutConfig, logger *slog.Logger) *LockoutGuard {
	return &LockoutGuard{
		config:  config,
		records: make(map[string]*attemptRecord),
		logger:  logger,
		now:     time.Now,
	}
}

// Check reports whether the email is currently locked out and, if so, how
// long the lockout has left. Expiry is lazy: a lockout whose window has
// elapsed is removed here, on the next check, rather than by a timer.
func (g *LockoutGuard) Check(email string) (locked bool, remaining time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.records[email]
	if !ok || record.count < g.config.MaxAttempts {
		return false, 0
	}

	elapsed := g.now().Sub(record.lastFailure)
	if elapsed >= g.config.LockoutDuration {
		delete(g.records, email)
		return false, 0
	}

	return true, g.config.LockoutDuration - elapsed
}

// RecordFailure registers a failed attempt for the email and then waits out
// the backoff delay for the new attempt count. The wait is an awaited timer,
// not a blocking sleep held under the lock, so other requests proceed; it
// ends early if ctx is cancelled.
func (g *LockoutGuard) RecordFailure(ctx context.Context, email string) {
	g.mu.Lock()
	record, ok := g.records[email]
	if !ok {
		record = &attemptRecord{}
		g.records[email] = record
	}
	record.count++
	record.lastFailure = g.now()
	count := record.count
	g.mu.Unlock()

	if count >= g.config.MaxAttempts {
		g.logger.Warn("account locked out after repeated login failures",
			slog.Int("failed_attempts", count))
	}

	g.delay(ctx, count)
}

// Clear removes the attempt record for the email. Called on successful
// authentication; any state transitions back to clear.
func (g *LockoutGuard) Clear(email string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.records, email)
}

// Prune drops records whose lockout window has fully elapsed, bounding
// memory. Lazy expiry in Check already handles correctness; this only
// reclaims records for emails that never come back.
func (g *LockoutGuard) Prune() (removed int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cutoff := g.now().Add(-g.config.LockoutDuration)
	for email, record := range g.records {
		if record.lastFailure.Before(cutoff) {
			delete(g.records, email)
			removed++
		}
	}
	return removed
}

// backoffFor computes the response delay for the nth failure:
// base * 2^(count-1), capped.
func (g *LockoutGuard) backoffFor(count int) time.Duration {
	d := g.config.BackoffBase
	for i := 1; i < count && d < g.config.BackoffCap; i++ {
		d *= 2
	}
	if d > g.config.BackoffCap {
		d = g.config.BackoffCap
	}
	return d
}

func (g *LockoutGuard) delay(ctx context.Context, count int) {
	d := g.backoffFor(count)
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

package auth

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGuard(t *testing.T) (*LockoutGuard, *time.Time) {
	t.Helper()
	config := LockoutConfig{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		BackoffBase:     time.Microsecond, // keep tests fast
		BackoffCap:      10 * time.Microsecond,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	guard := NewLockoutGuard(config, logger)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }
	return guard, &now
}

func failTimes(guard *LockoutGuard, email string, n int) {
	for i := 0; i < n; i++ {
		guard.RecordFailure(context.Background(), email)
	}
}

func TestLockoutGuard_ClearUntilMaxAttempts(t *testing.T) {
	guard, _ := newTestGuard(t)

	failTimes(guard, "user@example.com", 4)

	locked, remaining := guard.Check("user@example.com")
	assert.False(t, locked)
	assert.Zero(t, remaining)
}

func TestLockoutGuard_LocksAtMaxAttempts(t *testing.T) {
	guard, _ := newTestGuard(t)

	failTimes(guard, "user@example.com", 5)

	locked, remaining := guard.Check("user@example.com")
	assert.True(t, locked)
	assert.Equal(t, 15*time.Minute, remaining)
}

func TestLockoutGuard_RemainingShrinksOverTime(t *testing.T) {
	guard, now := newTestGuard(t)

	failTimes(guard, "user@example.com", 5)

	*now = now.Add(5 * time.Minute)
	locked, remaining := guard.Check("user@example.com")
	assert.True(t, locked)
	assert.Equal(t, 10*time.Minute, remaining)
}

func TestLockoutGuard_LazyExpiryClearsRecord(t *testing.T) {
	guard, now := newTestGuard(t)

	failTimes(guard, "user@example.com", 5)

	*now = now.Add(15*time.Minute + time.Second)
	locked, _ := guard.Check("user@example.com")
	assert.False(t, locked)

	// The record was deleted, not just ignored: failures start from scratch.
	failTimes(guard, "user@example.com", 1)
	locked, _ = guard.Check("user@example.com")
	assert.False(t, locked)
}

func TestLockoutGuard_SuccessClearsAnyState(t *testing.T) {
	guard, _ := newTestGuard(t)

	failTimes(guard, "user@example.com", 5)
	guard.Clear("user@example.com")

	locked, _ := guard.Check("user@example.com")
	assert.False(t, locked)
}

func TestLockoutGuard_EmailsAreIndependent(t *testing.T) {
	guard, _ := newTestGuard(t)

	failTimes(guard, "a@example.com", 5)

	locked, _ := guard.Check("b@example.com")
	assert.False(t, locked)
}

func TestLockoutGuard_PruneRemovesExpiredRecords(t *testing.T) {
	guard, now := newTestGuard(t)

	failTimes(guard, "stale@example.com", 2)
	*now = now.Add(16 * time.Minute)
	failTimes(guard, "fresh@example.com", 2)

	removed := guard.Prune()
	assert.Equal(t, 1, removed)

	guard.mu.Lock()
	defer guard.mu.Unlock()
	assert.NotContains(t, guard.records, "stale@example.com")
	assert.Contains(t, guard.records, "fresh@example.com")
}

func TestLockoutGuard_BackoffDoublesAndCaps(t *testing.T) {
	guard, _ := newTestGuard(t)
	guard.config.BackoffBase = time.Second
	guard.config.BackoffCap = 10 * time.Second

	// Cancelled context skips the actual wait; we only exercise the math
	// via the computed duration.
	cases := []struct {
		count int
		want  time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{6, 10 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, guard.backoffFor(tc.count), "count %d", tc.count)
	}
}

func TestLockoutGuard_RecordFailureRespectsContextCancellation(t *testing.T) {
	guard, _ := newTestGuard(t)
	guard.config.BackoffBase = time.Hour
	guard.config.BackoffCap = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		guard.RecordFailure(ctx, "user@example.com")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RecordFailure did not return after context cancellation")
	}
}

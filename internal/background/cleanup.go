package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/mosswell/inkwell/internal/auth"
)

// CleanupManager periodically prunes stale login attempt records. The guard
// expires lockouts lazily on access; this reclaims memory for accounts that
// never log in again.
type CleanupManager struct {
	guard    *auth.LockoutGuard
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(guard *auth.LockoutGuard, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		guard:    guard,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup() {
	removed := cm.guard.Prune()
	if removed > 0 {
		cm.logger.Info("stale login attempt records pruned", slog.Int("removed", removed))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}

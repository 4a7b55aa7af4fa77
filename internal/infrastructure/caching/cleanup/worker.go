// Package cleanup provides the background session expiry worker.
package cleanup

import (
	"context"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// StaleSelectionStore removes persisted compare selections whose sessions
// have gone idle. Satisfied by the compare repository.
type StaleSelectionStore interface {
	DeleteStale(cutoff time.Time) (int, error)
}

// Worker periodically purges expired sessions from the cache and their
// persisted compare selections from the database.
type Worker struct {
	cache      *manager.Manager
	selections StaleSelectionStore
	logger     *logging.ChanneledLogger
	interval   time.Duration
}

// NewWorker creates a new cleanup worker.
func NewWorker(cache *manager.Manager, selections StaleSelectionStore, logger *logging.ChanneledLogger) *Worker {
	return &Worker{
		cache:      cache,
		selections: selections,
		logger:     logger,
		interval:   config.SessionCleanupInterval,
	}
}

// Start begins the cleanup routine. It blocks until ctx is cancelled and is
// intended to run in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.System().Info("Session cleanup worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown().Info("Session cleanup worker stopping")
			return
		case <-ticker.C:
			w.performCleanup()
		}
	}
}

func (w *Worker) performCleanup() {
	start := time.Now()

	removed := w.cache.PurgeExpiredSessions()

	var selectionsRemoved int
	if w.selections != nil {
		cutoff := time.Now().UTC().Add(-config.SessionTTL)
		n, err := w.selections.DeleteStale(cutoff)
		if err != nil {
			w.logger.Cache().Error("Failed to delete stale compare selections", "error", err.Error())
		} else {
			selectionsRemoved = n
		}
	}

	if removed > 0 || selectionsRemoved > 0 {
		w.logger.Cache().Info("Session cleanup finished",
			"sessionsRemoved", removed,
			"selectionsRemoved", selectionsRemoved,
			"remaining", w.cache.SessionCount(),
			"duration", time.Since(start))
	}
}

package approval

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is how often the expiry sweep runs.
const DefaultSweepInterval = time.Minute

// Sweeper periodically expires stale pending actions. The sweep is a bulk,
// idempotent operation gated on the same pending-status condition as approve
// and reject, so overlapping sweeps and concurrent resolutions are safe.
type Sweeper struct {
	queue      Service
	interval   time.Duration
	logger     *slog.Logger
	shutdownCh chan struct{}
}

// NewSweeper creates a sweeper over the queue.
func NewSweeper(queue Service, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		queue:      queue,
		interval:   interval,
		logger:     logger,
		shutdownCh: make(chan struct{}),
	}
}

// Start runs the sweep loop until ctx is cancelled or Shutdown is called.
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			count, err := s.queue.ExpireStale(ctx)
			if err != nil {
				s.logger.Warn("expiry sweep failed", "error", err)
				continue
			}
			if count > 0 {
				s.logger.Info("expired stale actions", "count", count)
			}
		}
	}
}

// Shutdown stops the sweep loop.
func (s *Sweeper) Shutdown() {
	close(s.shutdownCh)
}

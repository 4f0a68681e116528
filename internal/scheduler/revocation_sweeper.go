package scheduler

import (
	"context"
	"time"

	"github.com/sekawan-grup/raya/internal/logger"
)

// DefaultSweepInterval is how often expired revocations are dropped from memory.
const DefaultSweepInterval = 15 * time.Minute

// Sweeper forgets revocations of tokens that have expired.
type Sweeper interface {
	Sweep() int
}

// RevocationSweeper periodically cleans the in-memory revocation list.
// Redis needs none of this: revoked keys carry their own TTL.
type RevocationSweeper struct {
	list     Sweeper
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewRevocationSweeper creates a new sweeper
func NewRevocationSweeper(list Sweeper, log logger.Logger, interval time.Duration) *RevocationSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &RevocationSweeper{
		list:     list,
		logger:   log.Named("sweeper"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (s *RevocationSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Collect()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the sweeper
func (s *RevocationSweeper) Stop() {
	close(s.stopCh)
}

// Collect runs one sweep and returns how many entries were removed.
func (s *RevocationSweeper) Collect() int {
	removed := s.list.Sweep()
	if removed > 0 {
		s.logger.Info("expired revocations removed", logger.Int("count", removed))
	} else {
		s.logger.Debug("no revocations to sweep")
	}
	return removed
}

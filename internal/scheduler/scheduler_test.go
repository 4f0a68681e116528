package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sekawan-grup/raya/internal/index"
	"github.com/sekawan-grup/raya/internal/logger"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshPublicCatalog(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestCatalogWarmerStartWarmsImmediately(t *testing.T) {
	refresher := &countingRefresher{}
	w := NewCatalogWarmer(refresher, logger.NewNop(), time.Hour, make(chan struct{}))

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	if got := refresher.calls.Load(); got != 1 {
		t.Errorf("refresh calls after Start() = %d, want 1", got)
	}
}

func TestCatalogWarmerStartFailsOnInitialError(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("db down")}
	w := NewCatalogWarmer(refresher, logger.NewNop(), time.Hour, make(chan struct{}))

	if err := w.Start(context.Background()); err == nil {
		t.Fatal("Start() should fail when the first warm fails")
	}
}

func TestCatalogWarmerManualTrigger(t *testing.T) {
	refresher := &countingRefresher{}
	trigger := make(chan struct{}, 1)
	w := NewCatalogWarmer(refresher, logger.NewNop(), time.Hour, trigger)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	trigger <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for refresher.calls.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("manual trigger did not rewarm, calls = %d", refresher.calls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRevocationSweeperCollect(t *testing.T) {
	ctx := context.Background()
	idx := index.NewMemoryIndex()

	_ = idx.RevokeToken(ctx, "short", time.Now().Add(20*time.Millisecond))
	_ = idx.RevokeToken(ctx, "long", time.Now().Add(time.Hour))

	s := NewRevocationSweeper(idx, logger.NewNop(), 0)
	if s.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want default", s.interval)
	}

	if removed := s.Collect(); removed != 0 {
		t.Errorf("Collect() removed %d before expiry, want 0", removed)
	}

	time.Sleep(40 * time.Millisecond)

	if removed := s.Collect(); removed != 1 {
		t.Errorf("Collect() removed %d, want 1", removed)
	}
	if idx.RevokedCount() != 1 {
		t.Errorf("RevokedCount() = %d, want 1", idx.RevokedCount())
	}
}

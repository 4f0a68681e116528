package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/sekawan-grup/raya/internal/logger"
)

// CatalogRefresher rebuilds the cached public catalog.
type CatalogRefresher interface {
	RefreshPublicCatalog(ctx context.Context) error
}

// CatalogWarmer keeps the public catalog cache filled: once at start, on
// every tick and whenever a mutation signals the trigger channel.
type CatalogWarmer struct {
	catalog       CatalogRefresher
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger <-chan struct{}
}

// NewCatalogWarmer creates a new catalog warmer
func NewCatalogWarmer(
	catalog CatalogRefresher,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *CatalogWarmer {
	return &CatalogWarmer{
		catalog:       catalog,
		logger:        log.Named("warmer"),
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start warms the cache and begins the refresh loop.
func (w *CatalogWarmer) Start(ctx context.Context) error {
	if err := w.Warm(ctx); err != nil {
		return fmt.Errorf("initial catalog warm failed: %w", err)
	}

	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.Warm(ctx); err != nil {
					w.logger.Error("failed to warm catalog", logger.Error(err))
				}
			case <-w.manualTrigger:
				w.logger.Debug("catalog changed, rewarming")
				if err := w.Warm(ctx); err != nil {
					w.logger.Error("failed to warm catalog", logger.Error(err))
				}
			case <-w.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the warmer
func (w *CatalogWarmer) Stop() {
	close(w.stopCh)
}

// Warm rebuilds the cache once.
func (w *CatalogWarmer) Warm(ctx context.Context) error {
	start := time.Now()
	if err := w.catalog.RefreshPublicCatalog(ctx); err != nil {
		return err
	}
	w.logger.Debug("public catalog cached", logger.Duration("took", time.Since(start)))
	return nil
}

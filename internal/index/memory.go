package index

import (
	"context"
	"sync"
	"time"

	"github.com/sekawan-grup/raya/internal/domain"
)

// MemoryIndex keeps the public catalog and revoked token IDs in process.
// It stands in for Redis when no Redis address is configured and in tests.
type MemoryIndex struct {
	mu            sync.RWMutex
	catalog       []domain.Category
	catalogExpiry time.Time
	hasCatalog    bool
	revoked       map[string]time.Time // jti -> token expiry
	lastReload    time.Time
	now           func() time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// GetCatalog returns a copy of the cached catalog. ok is false when nothing is
// cached or the entry has expired.
func (idx *MemoryIndex) GetCatalog(_ context.Context) ([]domain.Category, bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.hasCatalog || !idx.now().Before(idx.catalogExpiry) {
		return nil, false, nil
	}
	return cloneCatalog(idx.catalog), true, nil
}

// SetCatalog replaces the cached catalog for ttl.
func (idx *MemoryIndex) SetCatalog(_ context.Context, categories []domain.Category, ttl time.Duration) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.catalog = cloneCatalog(categories)
	idx.catalogExpiry = idx.now().Add(ttl)
	idx.hasCatalog = true
	idx.lastReload = idx.now()
	return nil
}

// InvalidateCatalog drops the cached catalog.
func (idx *MemoryIndex) InvalidateCatalog(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.catalog = nil
	idx.hasCatalog = false
	return nil
}

// RevokeToken marks jti as revoked until the given time.
func (idx *MemoryIndex) RevokeToken(_ context.Context, jti string, until time.Time) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !until.After(idx.now()) {
		return nil
	}
	idx.revoked[jti] = until
	return nil
}

// IsRevoked reports whether jti is revoked and not yet past its expiry.
func (idx *MemoryIndex) IsRevoked(_ context.Context, jti string) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	until, ok := idx.revoked[jti]
	return ok && idx.now().Before(until), nil
}

// Sweep forgets revocations whose tokens have expired and returns how many were removed.
func (idx *MemoryIndex) Sweep() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	now := idx.now()
	removed := 0
	for jti, until := range idx.revoked {
		if !now.Before(until) {
			delete(idx.revoked, jti)
			removed++
		}
	}
	return removed
}

// Count returns the number of cached categories.
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.catalog)
}

// RevokedCount returns the number of tracked revocations.
func (idx *MemoryIndex) RevokedCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.revoked)
}

// GetLastReload returns when the catalog was last stored.
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}

func cloneCatalog(in []domain.Category) []domain.Category {
	out := make([]domain.Category, len(in))
	for i, c := range in {
		out[i] = c
		if c.Links != nil {
			out[i].Links = append([]domain.Link(nil), c.Links...)
		}
	}
	return out
}

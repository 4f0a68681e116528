package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sekawan-grup/raya/internal/domain"
)

func TestNewMemoryIndex(t *testing.T) {
	index := NewMemoryIndex()
	if index == nil {
		t.Fatal("NewMemoryIndex() returned nil")
	}
	if _, ok, _ := index.GetCatalog(context.Background()); ok {
		t.Error("NewMemoryIndex() should start without a catalog")
	}
}

func TestCatalogSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	catalog := []domain.Category{
		{ID: 1, Name: "Shopee", Links: []domain.Link{{ID: 1, Title: "Emas", IsActive: true}}},
		{ID: 2, Name: "Tokopedia"},
	}
	if err := index.SetCatalog(ctx, catalog, time.Minute); err != nil {
		t.Fatalf("SetCatalog() error = %v", err)
	}

	got, ok, err := index.GetCatalog(ctx)
	if err != nil || !ok {
		t.Fatalf("GetCatalog() ok = %v, err = %v", ok, err)
	}
	if len(got) != 2 || index.Count() != 2 {
		t.Errorf("GetCatalog() returned %d categories, want 2", len(got))
	}
	if index.GetLastReload().IsZero() {
		t.Error("SetCatalog() should record the reload time")
	}

	// callers must not be able to mutate the cache
	got[0].Links[0].Title = "changed"
	again, _, _ := index.GetCatalog(ctx)
	if again[0].Links[0].Title != "Emas" {
		t.Errorf("cached catalog was mutated through a returned copy")
	}

	if err := index.InvalidateCatalog(ctx); err != nil {
		t.Fatalf("InvalidateCatalog() error = %v", err)
	}
	if _, ok, _ := index.GetCatalog(ctx); ok {
		t.Error("GetCatalog() after InvalidateCatalog() should miss")
	}
}

func TestCatalogExpires(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	now := time.Now()
	index.now = func() time.Time { return now }

	_ = index.SetCatalog(ctx, []domain.Category{{ID: 1}}, time.Minute)

	now = now.Add(2 * time.Minute)
	if _, ok, _ := index.GetCatalog(ctx); ok {
		t.Error("GetCatalog() should miss after the TTL")
	}
}

func TestRevocation(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()
	now := time.Now()
	index.now = func() time.Time { return now }

	_ = index.RevokeToken(ctx, "jti-1", now.Add(time.Hour))
	_ = index.RevokeToken(ctx, "jti-old", now.Add(-time.Hour))

	if revoked, _ := index.IsRevoked(ctx, "jti-1"); !revoked {
		t.Error("IsRevoked(jti-1) = false, want true")
	}
	if revoked, _ := index.IsRevoked(ctx, "jti-old"); revoked {
		t.Error("already expired token should not be tracked")
	}
	if revoked, _ := index.IsRevoked(ctx, "unknown"); revoked {
		t.Error("IsRevoked(unknown) = true, want false")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := index.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("revocation should lapse once the token has expired")
	}
	if removed := index.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if index.RevokedCount() != 0 {
		t.Errorf("RevokedCount() = %d, want 0", index.RevokedCount())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	index := NewMemoryIndex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _, _ = index.GetCatalog(ctx)
		}()
		go func() {
			defer wg.Done()
			_ = index.SetCatalog(ctx, []domain.Category{{ID: 1}}, time.Minute)
			_ = index.RevokeToken(ctx, "jti", time.Now().Add(time.Minute))
		}()
	}
	wg.Wait()

	if index.Count() != 1 {
		t.Errorf("Count() = %d, want 1", index.Count())
	}
}

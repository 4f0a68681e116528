package service

import (
	"context"
	"strings"
	"time"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
)

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Get(ctx context.Context, id uint) (*domain.Category, error)
	WithActiveLinks(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, id uint, name string, order int) (*domain.Category, error)
	Delete(ctx context.Context, id uint) error
}

type LinkStore interface {
	All(ctx context.Context) ([]domain.Link, error)
	List(ctx context.Context) ([]domain.Link, error)
	Get(ctx context.Context, id uint) (*domain.Link, error)
	ActiveByCategory(ctx context.Context, categoryID uint) ([]domain.Link, error)
	Create(ctx context.Context, l *domain.Link) error
	Update(ctx context.Context, categoryID, linkID uint, in domain.Link) (*domain.Link, error)
	Delete(ctx context.Context, categoryID, linkID uint) error
}

// CatalogCache stores the public categories-with-links response.
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]domain.Category, bool, error)
	SetCatalog(ctx context.Context, categories []domain.Category, ttl time.Duration) error
	InvalidateCatalog(ctx context.Context) error
}

// Catalog manages categories and links and keeps the public catalog cache
// consistent with every mutation.
type Catalog struct {
	categories CategoryStore
	links      LinkStore
	cache      CatalogCache
	cacheTTL   time.Duration
	warm       chan<- struct{} // optional, asks the warmer to rebuild the cache
	log        logger.Logger
}

func NewCatalog(categories CategoryStore, links LinkStore, cache CatalogCache, cacheTTL time.Duration, warm chan<- struct{}, log logger.Logger) *Catalog {
	return &Catalog{
		categories: categories,
		links:      links,
		cache:      cache,
		cacheTTL:   cacheTTL,
		warm:       warm,
		log:        log.Named("catalog"),
	}
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	return c.categories.List(ctx)
}

func (c *Catalog) Category(ctx context.Context, id uint) (*domain.Category, error) {
	return c.categories.Get(ctx, id)
}

func (c *Catalog) CreateCategory(ctx context.Context, name string, order int) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "Nama kategori harus diisi")
	}

	category := &domain.Category{Name: name, Order: order}
	if err := c.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	c.changed(ctx, "category created", category.ID)
	return category, nil
}

func (c *Catalog) UpdateCategory(ctx context.Context, id uint, name string, order int) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "Nama kategori harus diisi")
	}

	category, err := c.categories.Update(ctx, id, name, order)
	if err != nil {
		return nil, err
	}
	c.changed(ctx, "category updated", id)
	return category, nil
}

// DeleteCategory removes the category together with its links.
func (c *Catalog) DeleteCategory(ctx context.Context, id uint) error {
	if err := c.categories.Delete(ctx, id); err != nil {
		return err
	}
	c.changed(ctx, "category deleted", id)
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Links
// ─────────────────────────────────────────────────────────────────

func (c *Catalog) AllLinks(ctx context.Context) ([]domain.Link, error) {
	return c.links.All(ctx)
}

func (c *Catalog) Links(ctx context.Context) ([]domain.Link, error) {
	return c.links.List(ctx)
}

func (c *Catalog) Link(ctx context.Context, id uint) (*domain.Link, error) {
	return c.links.Get(ctx, id)
}

func (c *Catalog) CategoryLinks(ctx context.Context, categoryID uint) ([]domain.Link, error) {
	return c.links.ActiveByCategory(ctx, categoryID)
}

func (c *Catalog) CreateLink(ctx context.Context, categoryID uint, in domain.Link) (*domain.Link, error) {
	if err := validateLink(&in); err != nil {
		return nil, err
	}

	in.CategoryID = categoryID
	if err := c.links.Create(ctx, &in); err != nil {
		return nil, err
	}
	c.changed(ctx, "link created", in.ID)
	return &in, nil
}

// UpdateLink replaces every editable field of the link.
func (c *Catalog) UpdateLink(ctx context.Context, categoryID, linkID uint, in domain.Link) (*domain.Link, error) {
	if err := validateLink(&in); err != nil {
		return nil, err
	}

	link, err := c.links.Update(ctx, categoryID, linkID, in)
	if err != nil {
		return nil, err
	}
	c.changed(ctx, "link updated", linkID)
	return link, nil
}

func (c *Catalog) DeleteLink(ctx context.Context, categoryID, linkID uint) error {
	if err := c.links.Delete(ctx, categoryID, linkID); err != nil {
		return err
	}
	c.changed(ctx, "link deleted", linkID)
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Public catalog
// ─────────────────────────────────────────────────────────────────

// PublicCatalog returns categories by order with their active links, served
// from the cache when possible.
func (c *Catalog) PublicCatalog(ctx context.Context) ([]domain.Category, error) {
	cached, ok, err := c.cache.GetCatalog(ctx)
	if err != nil {
		c.log.Warn("catalog cache read failed, falling back to database", logger.Error(err))
	} else if ok {
		return cached, nil
	}
	return c.loadAndCache(ctx)
}

// RefreshPublicCatalog rebuilds the cache from the database.
func (c *Catalog) RefreshPublicCatalog(ctx context.Context) error {
	_, err := c.loadAndCache(ctx)
	return err
}

func (c *Catalog) loadAndCache(ctx context.Context) ([]domain.Category, error) {
	categories, err := c.categories.WithActiveLinks(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetCatalog(ctx, categories, c.cacheTTL); err != nil {
		c.log.Warn("failed to cache public catalog", logger.Error(err))
	}
	return categories, nil
}

// changed invalidates the public cache and nudges the warmer without blocking.
func (c *Catalog) changed(ctx context.Context, what string, id uint) {
	c.log.Info(what, logger.Uint("id", id))

	if err := c.cache.InvalidateCatalog(ctx); err != nil {
		c.log.Warn("failed to invalidate public catalog", logger.Error(err))
	}
	if c.warm == nil {
		return
	}
	select {
	case c.warm <- struct{}{}:
	default:
	}
}

func validateLink(in *domain.Link) error {
	in.Title = strings.TrimSpace(in.Title)
	in.URL = strings.TrimSpace(in.URL)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if in.Title == "" {
		return invalid("title", "Judul link wajib diisi")
	}
	if in.Price.IsNegative() {
		return invalid("price", "Harga tidak boleh negatif")
	}
	if in.PriceStr == "" && !in.Price.IsZero() {
		in.PriceStr = domain.FormatPrice(in.Price)
	}
	return nil
}

package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sekawan-grup/raya/internal/domain"
)

type LinksRepository struct {
	db *gorm.DB
}

func NewLinksRepository(db *gorm.DB) *LinksRepository {
	return &LinksRepository{db: db}
}

// All returns every link with its category, ordered by category then display order.
func (r *LinksRepository) All(ctx context.Context) ([]domain.Link, error) {
	links := []domain.Link{}
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Order("category_id asc").Order("sort_order asc").Order("id asc").
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// List returns every link in insertion order, without categories.
func (r *LinksRepository) List(ctx context.Context) ([]domain.Link, error) {
	links := []domain.Link{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

// Get returns a link with its category.
func (r *LinksRepository) Get(ctx context.Context, id uint) (*domain.Link, error) {
	var link domain.Link
	if err := r.db.WithContext(ctx).Preload("Category").First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

// ActiveByCategory returns the active links of a category by display order.
func (r *LinksRepository) ActiveByCategory(ctx context.Context, categoryID uint) ([]domain.Link, error) {
	db := r.db.WithContext(ctx)
	if err := categoryExists(db, categoryID); err != nil {
		return nil, err
	}

	links := []domain.Link{}
	if err := activeLinksByOrder(db.Where("category_id = ?", categoryID)).
		Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to list category links: %w", err)
	}
	return links, nil
}

// Create inserts l under its category, assigning the next order within that
// category when l.Order <= 0.
func (r *LinksRepository) Create(ctx context.Context, l *domain.Link) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, l.CategoryID); err != nil {
			return err
		}
		if l.Order <= 0 {
			next, err := nextOrder(tx.Model(&domain.Link{}).Where("category_id = ?", l.CategoryID))
			if err != nil {
				return err
			}
			l.Order = next
		}
		l.ID = 0
		l.Category = nil
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			return fmt.Errorf("failed to create link: %w", err)
		}
		return nil
	})
}

// Update replaces every editable field of link linkID, which must belong to categoryID.
func (r *LinksRepository) Update(ctx context.Context, categoryID, linkID uint, in domain.Link) (*domain.Link, error) {
	var link domain.Link
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND category_id = ?", linkID, categoryID).First(&link).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLinkNotFound
			}
			return fmt.Errorf("failed to get link: %w", err)
		}

		link.Title = in.Title
		link.URL = in.URL
		link.ImageURL = in.ImageURL
		link.Price = in.Price
		link.PriceStr = in.PriceStr
		link.Order = in.Order
		link.IsActive = in.IsActive
		link.CategoryID = categoryID

		if err := tx.Omit(clause.Associations).Save(&link).Error; err != nil {
			return fmt.Errorf("failed to update link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Delete removes link linkID from categoryID.
func (r *LinksRepository) Delete(ctx context.Context, categoryID, linkID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND category_id = ?", linkID, categoryID).
		Delete(&domain.Link{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete link: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func categoryExists(db *gorm.DB, id uint) error {
	var n int64
	if err := db.Model(&domain.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sekawan-grup/raya/internal/domain"
)

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// List returns all categories without their links, by display order.
func (r *CategoriesRepository) List(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := r.db.WithContext(ctx).
		Order("sort_order asc").Order("id asc").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get returns a category with its active links.
func (r *CategoriesRepository) Get(ctx context.Context, id uint) (*domain.Category, error) {
	var category domain.Category
	if err := r.db.WithContext(ctx).
		Preload("Links", activeLinksByOrder).
		First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// WithActiveLinks returns every category by order, each with its active links by order.
func (r *CategoriesRepository) WithActiveLinks(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := r.db.WithContext(ctx).
		Preload("Links", activeLinksByOrder).
		Order("sort_order asc").Order("id asc").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories with links: %w", err)
	}
	for i := range categories {
		if categories[i].Links == nil {
			categories[i].Links = []domain.Link{}
		}
	}
	return categories, nil
}

// NextOrder returns max(order)+1 over all categories, 1 for an empty table.
func (r *CategoriesRepository) NextOrder(ctx context.Context) (int, error) {
	return nextOrder(r.db.WithContext(ctx).Model(&domain.Category{}))
}

// Create inserts c, assigning the next display order when c.Order <= 0.
func (r *CategoriesRepository) Create(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if c.Order <= 0 {
			next, err := nextOrder(tx.Model(&domain.Category{}))
			if err != nil {
				return err
			}
			c.Order = next
		}
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
		return nil
	})
}

// Update replaces name and order of category id.
func (r *CategoriesRepository) Update(ctx context.Context, id uint, name string, order int) (*domain.Category, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to get category: %w", err)
		}
		category.Name = name
		category.Order = order
		if err := tx.Omit(clause.Associations).Save(&category).Error; err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category and all of its links.
func (r *CategoriesRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&domain.Link{}).Error; err != nil {
			return fmt.Errorf("failed to delete category links: %w", err)
		}
		res := tx.Delete(&domain.Category{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

// Count returns the number of categories.
func (r *CategoriesRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return n, nil
}

func activeLinksByOrder(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true).Order("sort_order asc").Order("id asc")
}

func nextOrder(q *gorm.DB) (int, error) {
	var row struct {
		MaxOrder int
	}
	if err := q.Select("COALESCE(MAX(sort_order), 0) AS max_order").Scan(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to compute next order: %w", err)
	}
	return row.MaxOrder + 1, nil
}

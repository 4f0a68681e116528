package seed

import (
	"fmt"
	"strings"

	"github.com/sekawan-grup/raya/internal/domain"
)

// Mapper converts seed entries to domain categories with their links
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapCatalog converts a CatalogFile to domain categories. Categories without
// a name and links without a title are skipped.
func (m *Mapper) MapCatalog(file CatalogFile) ([]domain.Category, error) {
	var categories []domain.Category

	for _, c := range file.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}

		category := domain.Category{Name: name, Order: c.Order}
		for _, l := range c.Links {
			link, ok := mapLink(l)
			if !ok {
				continue
			}
			category.Links = append(category.Links, link)
		}
		categories = append(categories, category)
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("no valid categories found in catalog file")
	}

	return categories, nil
}

func mapLink(l LinkEntry) (domain.Link, bool) {
	title := strings.TrimSpace(l.Title)
	if title == "" {
		return domain.Link{}, false
	}

	price, priceStr := domain.ParsePriceInput(l.Price)
	if l.PriceStr != "" {
		priceStr = l.PriceStr
	}

	active := true
	if l.Active != nil {
		active = *l.Active
	}

	return domain.Link{
		Title:    title,
		URL:      strings.TrimSpace(l.URL),
		ImageURL: strings.TrimSpace(l.Image),
		Price:    price,
		PriceStr: priceStr,
		Order:    l.Order,
		IsActive: active,
	}, true
}

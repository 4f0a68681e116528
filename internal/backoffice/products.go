package backoffice

import (
	"context"

	"github.com/sekawan-grup/raya/internal/domain"
)

type CatalogAPI interface {
	CategoriesWithLinks(ctx context.Context) ([]domain.Category, error)
}

// ProductPage is the public product listing.
type ProductPage struct {
	api CatalogAPI
}

func NewProductPage(api CatalogAPI) *ProductPage {
	return &ProductPage{api: api}
}

// Load returns the product cards: categories by order, active links only.
// The API already drops inactive links; they are filtered again here.
func (p *ProductPage) Load(ctx context.Context) ([]domain.Product, error) {
	categories, err := p.api.CategoriesWithLinks(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Products(categories), nil
}

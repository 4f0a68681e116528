package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups links under a marketplace or channel label (ex: "Shopee").
type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Order int    `gorm:"column:sort_order;not null;default:0" json:"order"`
	Links []Link `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"links,omitempty"`
}

// Link is a sellable item shown on the public product page when active.
type Link struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Title      string          `gorm:"not null" json:"title"`
	URL        string          `gorm:"not null" json:"url"` // empty means "coming soon"
	ImageURL   string          `json:"image_url"`
	Price      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"price"`
	PriceStr   string          `json:"price_str"`
	Order      int             `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	CategoryID uint            `gorm:"index;not null" json:"category_id"`
	Category   *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Admin is a back office account. Password holds the bcrypt hash.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a card on the public product page.
type Product struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Link        string `json:"link"`
	Marketplace string `json:"marketplace"`
}

// ComingSoon reports whether the card has no destination yet.
func (p Product) ComingSoon() bool {
	return p.Link == ""
}

// SortCategories orders categories by display order, keeping fetch order on ties.
func SortCategories(categories []Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Order < categories[j].Order
	})
}

// SortLinks orders links by display order, keeping fetch order on ties.
func SortLinks(links []Link) {
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Order < links[j].Order
	})
}

// ActiveLinks returns the links visible on the public site, in their original order.
func ActiveLinks(links []Link) []Link {
	active := make([]Link, 0, len(links))
	for _, l := range links {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active
}

// Products maps categories to product cards: categories by order, active links only.
func Products(categories []Category) []Product {
	sorted := make([]Category, len(categories))
	copy(sorted, categories)
	SortCategories(sorted)

	var products []Product
	for _, c := range sorted {
		for _, l := range ActiveLinks(c.Links) {
			products = append(products, Product{
				Name:        l.Title,
				Image:       l.ImageURL,
				Price:       l.PriceStr,
				Link:        l.URL,
				Marketplace: c.Name,
			})
		}
	}
	return products
}

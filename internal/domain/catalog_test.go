package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    decimal.Decimal
		expected string
	}{
		{name: "zero", price: decimal.Zero, expected: "Rp 0"},
		{name: "hundreds", price: decimal.NewFromInt(950), expected: "Rp 950"},
		{name: "millions", price: decimal.NewFromInt(1631000), expected: "Rp 1.631.000"},
		{name: "fraction dropped", price: decimal.RequireFromString("2500000.99"), expected: "Rp 2.500.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.price); got != tt.expected {
				t.Errorf("FormatPrice() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParsePriceInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantPrice string
		wantStr   string
	}{
		{name: "plain number", input: "1631000", wantPrice: "1631000", wantStr: "Rp 1.631.000"},
		{name: "surrounding spaces", input: "  75000 ", wantPrice: "75000", wantStr: "Rp 75.000"},
		{name: "fraction kept", input: "1631000.75", wantPrice: "1631000.75", wantStr: "Rp 1.631.000"},
		{name: "trailing garbage", input: "1631000 IDR", wantPrice: "0", wantStr: ""},
		{name: "empty", input: "", wantPrice: "0", wantStr: ""},
		{name: "not a number", input: "abc", wantPrice: "0", wantStr: ""},
		{name: "sign only", input: "-", wantPrice: "0", wantStr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, str := ParsePriceInput(tt.input)
			if !price.Equal(decimal.RequireFromString(tt.wantPrice)) {
				t.Errorf("ParsePriceInput() price = %v, want %v", price, tt.wantPrice)
			}
			if str != tt.wantStr {
				t.Errorf("ParsePriceInput() str = %q, want %q", str, tt.wantStr)
			}
		})
	}
}

func TestProductsShowsOnlyActiveLinks(t *testing.T) {
	categories := []Category{
		{
			ID:    1,
			Name:  "Shopee",
			Order: 0,
			Links: []Link{
				{ID: 1, Title: "Emas 1 gram", URL: "https://shopee.co.id/emas-1g", PriceStr: "Rp 1.631.000", IsActive: true, CategoryID: 1},
				{ID: 2, Title: "Emas 5 gram", URL: "https://shopee.co.id/emas-5g", PriceStr: "Rp 7.900.000", IsActive: false, CategoryID: 1},
			},
		},
	}

	products := Products(categories)
	if len(products) != 1 {
		t.Fatalf("Products() returned %d cards, want 1", len(products))
	}
	if products[0].Name != "Emas 1 gram" {
		t.Errorf("Products()[0].Name = %q, want the active link", products[0].Name)
	}
	if products[0].Marketplace != "Shopee" {
		t.Errorf("Products()[0].Marketplace = %q, want Shopee", products[0].Marketplace)
	}
}

func TestProductsOrdersByCategory(t *testing.T) {
	categories := []Category{
		{ID: 2, Name: "Tokopedia", Order: 2, Links: []Link{{Title: "b", IsActive: true}}},
		{ID: 1, Name: "Shopee", Order: 1, Links: []Link{{Title: "a", IsActive: true, URL: ""}}},
	}

	products := Products(categories)
	if len(products) != 2 {
		t.Fatalf("Products() returned %d cards, want 2", len(products))
	}
	if products[0].Marketplace != "Shopee" || products[1].Marketplace != "Tokopedia" {
		t.Errorf("Products() not sorted by category order: %+v", products)
	}
	if !products[0].ComingSoon() {
		t.Errorf("card without URL should be coming soon")
	}
	if categories[0].Name != "Tokopedia" {
		t.Errorf("Products() must not reorder the caller's slice")
	}
}

func TestSortLinksIsStable(t *testing.T) {
	links := []Link{
		{ID: 1, Order: 2},
		{ID: 2, Order: 1},
		{ID: 3, Order: 2},
		{ID: 4, Order: 0},
	}

	SortLinks(links)

	want := []uint{4, 2, 1, 3}
	for i, id := range want {
		if links[i].ID != id {
			t.Errorf("SortLinks()[%d].ID = %d, want %d", i, links[i].ID, id)
		}
	}
}

func TestLinkJSONPriceIsNumber(t *testing.T) {
	l := Link{ID: 1, Title: "Emas", Price: decimal.NewFromInt(1631000), IsActive: true}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"price":1631000`) {
		t.Errorf("price should be encoded as a number, got %s", data)
	}
	if strings.Contains(string(data), `"category":`) {
		t.Errorf("nil category should be omitted, got %s", data)
	}

	var back Link
	if err := json.Unmarshal([]byte(`{"price":250000.5,"is_active":false}`), &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Price.Equal(decimal.RequireFromString("250000.5")) {
		t.Errorf("Unmarshal() price = %v", back.Price)
	}
}

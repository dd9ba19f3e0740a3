// Package catalog holds the immutable product list the storefront is built on.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Product is a catalog entry. Prices are in the base currency.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	SalePrice   *float64  `json:"salePrice,omitempty"`
	Stock       int       `json:"stock"`
	Rating      *float64  `json:"rating,omitempty"`
	DateAdded   time.Time `json:"dateAdded"`
	Image       string    `json:"img,omitempty"`

	// EffectivePrice is SalePrice when present, otherwise Price.
	// It is derived once by New and never recomputed.
	EffectivePrice float64 `json:"effectivePrice"`

	// Seq is the insertion ordinal embedded in the id (p12 -> 12), or the
	// position in the input list when the id carries none.
	Seq int `json:"-"`
}

// OnSale reports whether the product carries a sale price.
func (p Product) OnSale() bool {
	return p.SalePrice != nil
}

// RatingOrZero returns the rating, treating an absent rating as 0.
func (p Product) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// StockLevel classifies remaining stock for display
type StockLevel string

const (
	StockOut  StockLevel = "out"
	StockLow  StockLevel = "low"
	StockHigh StockLevel = "high"
)

// LowStockThreshold is the highest stock count still reported as low
const LowStockThreshold = 10

func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= LowStockThreshold:
		return StockLow
	default:
		return StockHigh
	}
}

// Counter reports how many units of a product were ever added to a cart.
type Counter interface {
	Count(productID string) int
}

// Catalog is a read-only, ordered product list.
type Catalog struct {
	products   []Product
	byID       map[string]int
	categories []string
}

// New validates products and builds a catalog. The input slice is copied.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}

	seenCategory := make(map[string]bool)

	for i, p := range products {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %d: duplicate id %q", i, p.ID)
		}

		p.SalePrice = copyFloat(p.SalePrice)
		p.Rating = copyFloat(p.Rating)
		p.EffectivePrice = p.Price
		if p.SalePrice != nil {
			p.EffectivePrice = *p.SalePrice
		}
		p.Seq = embeddedOrdinal(p.ID, i+1)

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)

		if !seenCategory[p.Category] {
			seenCategory[p.Category] = true
			c.categories = append(c.categories, p.Category)
		}
	}

	return c, nil
}

func validate(p Product) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("missing id")
	}
	if p.Price < 0 {
		return fmt.Errorf("%s: negative price", p.ID)
	}
	if p.SalePrice != nil && (*p.SalePrice < 0 || *p.SalePrice > p.Price) {
		return fmt.Errorf("%s: sale price %.2f must be between 0 and price %.2f", p.ID, *p.SalePrice, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%s: negative stock", p.ID)
	}
	if p.Rating != nil && (*p.Rating < 0 || *p.Rating > 5) {
		return fmt.Errorf("%s: rating %.1f out of range", p.ID, *p.Rating)
	}
	return nil
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// embeddedOrdinal extracts the trailing number of an id like "p12".
func embeddedOrdinal(id string, fallback int) int {
	end := len(id)
	start := end
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == end {
		return fallback
	}
	n, err := strconv.Atoi(id[start:end])
	if err != nil {
		return fallback
	}
	return n
}

// Get looks up a product by id.
func (c *Catalog) Get(id string) (Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns a copy of the products in catalog order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// HasCategory reports whether category names a catalog category.
func (c *Catalog) HasCategory(category string) bool {
	for _, cat := range c.categories {
		if cat == category {
			return true
		}
	}
	return false
}

// NewArrivals returns up to n products, most recently added first.
func (c *Catalog) NewArrivals(n int) []Product {
	products := c.All()
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].DateAdded.After(products[j].DateAdded)
	})
	return limit(products, n)
}

// Recommendations returns up to n other products of the same category,
// most popular first.
func (c *Catalog) Recommendations(id string, popularity Counter, n int) []Product {
	p, ok := c.Get(id)
	if !ok {
		return nil
	}

	var related []Product
	for _, candidate := range c.products {
		if candidate.Category == p.Category && candidate.ID != p.ID {
			related = append(related, candidate)
		}
	}

	sort.SliceStable(related, func(i, j int) bool {
		return popularity.Count(related[i].ID) > popularity.Count(related[j].ID)
	})
	return limit(related, n)
}

func limit(products []Product, n int) []Product {
	if n >= 0 && len(products) > n {
		return products[:n]
	}
	return products
}

// Float returns a pointer to v, for building products with a sale price or rating.
func Float(v float64) *float64 {
	return &v
}

// Package query computes the visible catalog page from the query state.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/73ai/storefront/internal/catalog"
)

// View is one computed catalog page
type View struct {
	Items      []catalog.Product `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// Compute runs category filter, text filter, constraint filter, stable sort
// and pagination, in that order. It does not modify cat or popularity.
func Compute(cat *catalog.Catalog, state State, popularity catalog.Counter) View {
	products := cat.All()

	products = filterCategory(products, state.Category)
	products = filterText(products, state.Search)
	products = applyFilters(products, state.Filters)

	sortProducts(products, state.Sort, popularity)

	page := state.Page
	if page < 1 {
		page = 1
	}

	return View{
		Items:      paginate(products, page, ItemsPerPage),
		Total:      len(products),
		Page:       page,
		TotalPages: TotalPages(len(products)),
	}
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total int) int {
	return (total + ItemsPerPage - 1) / ItemsPerPage
}

func filterCategory(products []catalog.Product, category string) []catalog.Product {
	if category == "" || category == CategoryAll {
		return products
	}

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func filterText(products []catalog.Product, search string) []catalog.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return products
	}

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		haystack := strings.ToLower(p.Name + p.Description + p.Category)
		if strings.Contains(haystack, needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func applyFilters(products []catalog.Product, f Filters) []catalog.Product {
	if !f.Active() {
		return products
	}

	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if matchesFilters(p, f) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchesFilters(p catalog.Product, f Filters) bool {
	if min, ok := bound(f.MinPrice); ok && p.EffectivePrice < min {
		return false
	}
	if max, ok := bound(f.MaxPrice); ok && p.EffectivePrice > max {
		return false
	}
	if f.InStockOnly && p.Stock == 0 {
		return false
	}
	if f.OnSaleOnly && !p.OnSale() {
		return false
	}
	return true
}

// bound treats a nil or zero price bound as unset.
func bound(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

// sortProducts orders products in place. Products with equal keys keep
// their catalog order.
func sortProducts(products []catalog.Product, mode SortMode, popularity catalog.Counter) {
	var less func(a, b catalog.Product) bool

	switch mode {
	case SortPopular:
		if popularity == nil {
			return
		}
		less = func(a, b catalog.Product) bool {
			return popularity.Count(a.ID) > popularity.Count(b.ID)
		}
	case SortOnSale:
		less = func(a, b catalog.Product) bool {
			return a.OnSale() && !b.OnSale()
		}
	case SortPriceAsc:
		less = func(a, b catalog.Product) bool {
			return a.EffectivePrice < b.EffectivePrice
		}
	case SortPriceDesc:
		less = func(a, b catalog.Product) bool {
			return a.EffectivePrice > b.EffectivePrice
		}
	case SortRating:
		less = func(a, b catalog.Product) bool {
			return a.RatingOrZero() > b.RatingOrZero()
		}
	case SortNewest:
		less = func(a, b catalog.Product) bool {
			return a.Seq > b.Seq
		}
	case SortNameAsc:
		collator := collate.New(language.Und)
		less = func(a, b catalog.Product) bool {
			return collator.CompareString(a.Name, b.Name) < 0
		}
	default:
		return
	}

	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}

func paginate(products []catalog.Product, page, pageSize int) []catalog.Product {
	offset := (page - 1) * pageSize
	if offset >= len(products) {
		return []catalog.Product{}
	}

	end := offset + pageSize
	if end > len(products) {
		end = len(products)
	}

	return products[offset:end]
}

package query

import "strings"

// ItemsPerPage is the fixed catalog page size
const ItemsPerPage = 8

// CategoryAll disables the category filter
const CategoryAll = "all"

// SortMode selects the catalog ordering
type SortMode string

const (
	SortDefault   SortMode = "default"
	SortPopular   SortMode = "popular"
	SortOnSale    SortMode = "on-sale"
	SortPriceAsc  SortMode = "price-asc"
	SortPriceDesc SortMode = "price-desc"
	SortRating    SortMode = "rating"
	SortNewest    SortMode = "newest"
	SortNameAsc   SortMode = "name-asc"
)

// SortModes lists every mode in menu order
func SortModes() []SortMode {
	return []SortMode{
		SortDefault,
		SortPopular,
		SortOnSale,
		SortPriceAsc,
		SortPriceDesc,
		SortRating,
		SortNewest,
		SortNameAsc,
	}
}

// ParseSortMode maps s to a SortMode; unknown values become SortDefault.
func ParseSortMode(s string) SortMode {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, mode := range SortModes() {
		if string(mode) == s {
			return mode
		}
	}
	return SortDefault
}

// Filters holds the constraint stage settings. Nil or zero bounds are unset.
type Filters struct {
	MinPrice    *float64 `json:"minPrice,omitempty"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	InStockOnly bool     `json:"inStockOnly,omitempty"`
	OnSaleOnly  bool     `json:"onSaleOnly,omitempty"`
}

// Active reports whether any constraint is set.
func (f Filters) Active() bool {
	_, hasMin := bound(f.MinPrice)
	_, hasMax := bound(f.MaxPrice)
	return hasMin || hasMax || f.InStockOnly || f.OnSaleOnly
}

// State is the mutable UI query state. Any change other than WithPage
// sends the shopper back to page 1.
type State struct {
	Category string   `json:"category"`
	Search   string   `json:"search,omitempty"`
	Sort     SortMode `json:"sort"`
	Filters  Filters  `json:"filters"`
	Page     int      `json:"page"`
}

func DefaultState() State {
	return State{
		Category: CategoryAll,
		Sort:     SortDefault,
		Page:     1,
	}
}

func (s State) WithCategory(category string) State {
	if category == "" {
		category = CategoryAll
	}
	s.Category = category
	s.Page = 1
	return s
}

func (s State) WithSearch(text string) State {
	s.Search = text
	s.Page = 1
	return s
}

func (s State) WithSort(mode SortMode) State {
	s.Sort = mode
	s.Page = 1
	return s
}

func (s State) WithFilters(f Filters) State {
	s.Filters = f
	s.Page = 1
	return s
}

func (s State) WithPage(page int) State {
	if page < 1 {
		page = 1
	}
	s.Page = page
	return s
}

// Package urlstate maps the browsing view to and from URL query parameters.
package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/73ai/storefront/internal/query"
)

// Query parameter names
const (
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamSearch   = "q"
	ParamProduct  = "product"
)

// ViewState is the shareable part of the browsing state.
type ViewState struct {
	Category  string         `json:"category"`
	Sort      query.SortMode `json:"sort"`
	Page      int            `json:"page"`
	Search    string         `json:"q,omitempty"`
	ProductID string         `json:"product,omitempty"`
}

func Default() ViewState {
	return ViewState{
		Category: query.CategoryAll,
		Sort:     query.SortDefault,
		Page:     1,
	}
}

// Encode renders v as a query string without the leading "?". Parameters
// at their default value are left out, so the default view encodes to "".
func Encode(v ViewState) string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, key+"="+url.QueryEscape(value))
	}

	if v.Category != "" && v.Category != query.CategoryAll {
		add(ParamCategory, v.Category)
	}
	if v.Sort != "" && v.Sort != query.SortDefault {
		add(ParamSort, string(v.Sort))
	}
	if v.Page > 1 {
		add(ParamPage, strconv.Itoa(v.Page))
	}
	if search := strings.TrimSpace(v.Search); search != "" {
		add(ParamSearch, search)
	}
	if v.ProductID != "" {
		add(ParamProduct, v.ProductID)
	}

	return strings.Join(parts, "&")
}

// Decode parses a query string, with or without a leading "?", or a full
// URL. Missing or invalid values fall back to their defaults.
func Decode(raw string) ViewState {
	v := Default()

	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}

	values, err := url.ParseQuery(raw)
	if err != nil && len(values) == 0 {
		return v
	}

	if c := strings.TrimSpace(values.Get(ParamCategory)); c != "" {
		v.Category = c
	}
	v.Sort = query.ParseSortMode(values.Get(ParamSort))
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get(ParamPage))); err == nil && page > 0 {
		v.Page = page
	}
	v.Search = values.Get(ParamSearch)
	v.ProductID = strings.TrimSpace(values.Get(ParamProduct))

	return v
}

// FromQuery extracts the shareable fields of a query state.
func FromQuery(s query.State, productID string) ViewState {
	return ViewState{
		Category:  s.Category,
		Sort:      s.Sort,
		Page:      s.Page,
		Search:    s.Search,
		ProductID: productID,
	}
}

// Apply copies v onto s, keeping s's filters.
func (v ViewState) Apply(s query.State) query.State {
	s.Category = v.Category
	s.Sort = v.Sort
	s.Search = v.Search
	s.Page = v.Page
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

package urlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/73ai/storefront/internal/query"
)

func TestEncodeOmitsDefaults(t *testing.T) {
	tests := []struct {
		name string
		view ViewState
		want string
	}{
		{"default view", Default(), ""},
		{"zero value", ViewState{}, ""},
		{"category only", ViewState{Category: "indoor", Sort: query.SortDefault, Page: 1}, "category=indoor"},
		{
			"everything",
			ViewState{Category: "outdoor", Sort: query.SortPriceAsc, Page: 3, Search: "snake plant", ProductID: "p2"},
			"category=outdoor&sort=price-asc&page=3&q=snake+plant&product=p2",
		},
		{"blank search", ViewState{Category: query.CategoryAll, Search: "   "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.view))
		})
	}
}

func TestDecodeDefensive(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ViewState
	}{
		{"empty", "", Default()},
		{"bad page", "?page=abc", Default()},
		{"negative page", "page=-2", Default()},
		{"unknown sort", "sort=cheapest-first", Default()},
		{"broken escape", "q=%zz&page=2", ViewState{Category: "all", Sort: query.SortDefault, Page: 2}},
		{
			"full url",
			"https://shop.example/?category=succulents&sort=rating&page=2&q=aloe&product=p4#top",
			ViewState{Category: "succulents", Sort: query.SortRating, Page: 2, Search: "aloe", ProductID: "p4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.raw))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	v := ViewState{Category: "indoor", Sort: query.SortNewest, Page: 2, Search: "fig & ivy", ProductID: "p3"}
	assert.Equal(t, v, Decode(Encode(v)))
}

func TestApplyKeepsFilters(t *testing.T) {
	s := query.DefaultState().WithFilters(query.Filters{InStockOnly: true})
	v := ViewState{Category: "indoor", Sort: query.SortRating, Page: 0}

	got := v.Apply(s)
	assert.True(t, got.Filters.InStockOnly)
	assert.Equal(t, "indoor", got.Category)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, v.Category, FromQuery(got, "").Category)
}

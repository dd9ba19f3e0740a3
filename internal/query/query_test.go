package query

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/73ai/storefront/internal/catalog"
)

type counts map[string]int

func (c counts) Count(id string) int { return c[id] }

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.LoadFile(filepath.Join("..", "catalog", "testdata", "products.json"))
	require.NoError(t, err)
	return cat
}

func ids(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestOnSaleOnlyPriceAsc(t *testing.T) {
	cat, err := catalog.New([]catalog.Product{
		{ID: "P1", Name: "one", Price: 10, Stock: 1},
		{ID: "P2", Name: "two", Price: 20, SalePrice: catalog.Float(15), Stock: 1},
	})
	require.NoError(t, err)

	state := DefaultState().
		WithSort(SortPriceAsc).
		WithFilters(Filters{OnSaleOnly: true})

	view := Compute(cat, state, nil)
	assert.Equal(t, []string{"P2"}, ids(view.Items))
	assert.Equal(t, 1, view.Total)
}

func TestPagination(t *testing.T) {
	cat := loadCatalog(t)

	tests := []struct {
		page int
		want []string
	}{
		{1, []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}},
		{2, []string{"p9", "p10", "p11", "p12"}},
		{3, []string{}},
	}

	for _, tt := range tests {
		view := Compute(cat, DefaultState().WithPage(tt.page), nil)
		assert.Equal(t, tt.want, ids(view.Items), "page %d", tt.page)
		assert.Equal(t, 12, view.Total)
		assert.Equal(t, 2, view.TotalPages)
		assert.LessOrEqual(t, len(view.Items), ItemsPerPage)
	}
}

func TestSortModes(t *testing.T) {
	cat := loadCatalog(t)
	popularity := counts{"p9": 4, "p3": 1}

	tests := []struct {
		mode SortMode
		want []string
	}{
		{SortDefault, []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9", "p10", "p11", "p12"}},
		{SortPriceAsc, []string{"p5", "p11", "p4", "p10", "p6", "p8", "p2", "p7", "p12", "p1", "p9", "p3"}},
		{SortPriceDesc, []string{"p3", "p9", "p1", "p12", "p2", "p7", "p8", "p6", "p10", "p4", "p5", "p11"}},
		{SortRating, []string{"p4", "p1", "p9", "p2", "p11", "p6", "p7", "p3", "p8", "p12", "p5", "p10"}},
		{SortNewest, []string{"p12", "p11", "p10", "p9", "p8", "p7", "p6", "p5", "p4", "p3", "p2", "p1"}},
		{SortNameAsc, []string{"p4", "p9", "p7", "p10", "p5", "p3", "p8", "p6", "p1", "p11", "p2", "p12"}},
		{SortOnSale, []string{"p1", "p4", "p7", "p10", "p2", "p3", "p5", "p6", "p8", "p9", "p11", "p12"}},
		{SortPopular, []string{"p9", "p3", "p1", "p2", "p4", "p5", "p6", "p7", "p8", "p10", "p11", "p12"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			state := DefaultState().WithSort(tt.mode)

			var all []string
			for page := 1; page <= 2; page++ {
				view := Compute(cat, state.WithPage(page), popularity)
				all = append(all, ids(view.Items)...)
			}
			assert.Equal(t, tt.want, all)
		})
	}
}

func TestTextSearch(t *testing.T) {
	cat := loadCatalog(t)

	tests := []struct {
		search string
		want   []string
	}{
		{"succulent", []string{"p4", "p5", "p6"}},
		{"  INDOOR ", []string{"p1", "p2", "p3", "p9"}},
		{"copper", []string{"p12"}},
		{"cactus", []string{}},
		{"", []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			view := Compute(cat, DefaultState().WithSearch(tt.search), nil)
			assert.Equal(t, tt.want, ids(view.Items))
		})
	}
}

func TestCategoryAndConstraints(t *testing.T) {
	cat := loadCatalog(t)

	view := Compute(cat, DefaultState().WithCategory("indoor").WithFilters(Filters{InStockOnly: true}), nil)
	assert.Equal(t, []string{"p1", "p2", "p9"}, ids(view.Items))

	view = Compute(cat, DefaultState().WithFilters(Filters{
		MinPrice: catalog.Float(300),
		MaxPrice: catalog.Float(700),
	}), nil)
	assert.Equal(t, []string{"p2", "p6", "p7", "p8", "p12"}, ids(view.Items))

	view = Compute(cat, DefaultState().WithFilters(Filters{MaxPrice: catalog.Float(0)}), nil)
	assert.Equal(t, 12, view.Total, "zero bound is ignored")
}

func TestStateChangesResetPage(t *testing.T) {
	state := DefaultState().WithPage(3)
	assert.Equal(t, 3, state.Page)

	assert.Equal(t, 1, state.WithCategory("indoor").Page)
	assert.Equal(t, 1, state.WithSearch("fig").Page)
	assert.Equal(t, 1, state.WithSort(SortRating).Page)
	assert.Equal(t, 1, state.WithFilters(Filters{OnSaleOnly: true}).Page)
	assert.Equal(t, 1, state.WithPage(0).Page)
	assert.Equal(t, CategoryAll, state.WithCategory("").Category)
}

func TestParseSortMode(t *testing.T) {
	assert.Equal(t, SortPriceDesc, ParseSortMode("price-desc"))
	assert.Equal(t, SortNameAsc, ParseSortMode(" Name-Asc "))
	assert.Equal(t, SortDefault, ParseSortMode("cheapest"))
}

func TestComputeDoesNotMutateCatalog(t *testing.T) {
	cat := loadCatalog(t)
	before := ids(cat.All())

	Compute(cat, DefaultState().WithSort(SortPriceDesc), nil)

	assert.Equal(t, before, ids(cat.All()))
}

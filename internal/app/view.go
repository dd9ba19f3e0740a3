package app

import (
	"context"

	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/query"
	"github.com/73ai/storefront/internal/urlstate"
)

// Query returns the current browsing state
func (a *App) Query() query.State {
	return a.query
}

// OpenProductID is the product whose detail is open, or "".
func (a *App) OpenProductID() string {
	return a.openProduct
}

func (a *App) Currency() string {
	return a.settings.Currency()
}

// SetCategory filters by category and returns to page 1. Unknown
// categories are rejected.
func (a *App) SetCategory(category string) error {
	if category != "" && category != query.CategoryAll && !a.catalog.HasCategory(category) {
		return errs.NotFound("category", category)
	}
	a.query = a.query.WithCategory(category)
	return nil
}

func (a *App) SetSearch(text string) {
	a.query = a.query.WithSearch(text)
}

func (a *App) SetSort(mode query.SortMode) {
	a.query = a.query.WithSort(mode)
}

func (a *App) SetFilters(f query.Filters) {
	a.query = a.query.WithFilters(f)
}

func (a *App) ResetFilters() {
	a.query = a.query.WithFilters(query.Filters{})
}

func (a *App) SetPage(page int) {
	a.query = a.query.WithPage(page)
}

// View computes the current catalog page.
func (a *App) View() query.View {
	return query.Compute(a.catalog, a.query, a.popularity)
}

// OpenProduct opens the detail view for id and records it as recently viewed.
func (a *App) OpenProduct(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := a.catalog.Get(id)
	if !ok {
		return catalog.Product{}, errs.NotFound("product", id)
	}

	a.openProduct = id
	if err := a.recent.Push(ctx, id); err != nil {
		a.log.Warn().Err(err).Str("product", id).Msg("recently viewed not saved")
	}
	return p, nil
}

func (a *App) CloseProduct() {
	a.openProduct = ""
}

// URL encodes the shareable view as a query string.
func (a *App) URL() string {
	return urlstate.Encode(urlstate.FromQuery(a.query, a.openProduct))
}

// LoadURL restores the view from a query string or URL. Unknown categories
// fall back to all; a product id that does not resolve leaves the detail
// view closed.
func (a *App) LoadURL(ctx context.Context, raw string) {
	v := urlstate.Decode(raw)
	if v.Category != query.CategoryAll && !a.catalog.HasCategory(v.Category) {
		a.log.Debug().Str("category", v.Category).Msg("ignoring unknown category in url")
		v.Category = query.CategoryAll
	}

	a.query = v.Apply(a.query)
	a.openProduct = ""

	if v.ProductID == "" {
		return
	}
	if _, err := a.OpenProduct(ctx, v.ProductID); err != nil {
		a.log.Debug().Str("product", v.ProductID).Msg("ignoring unknown product in url")
	}
}

// Restore reapplies a browsing state taken from another App, such as one
// built on an older catalog snapshot. Categories and products missing from
// this catalog are dropped.
func (a *App) Restore(state query.State, openProduct string) {
	if state.Category != query.CategoryAll && !a.catalog.HasCategory(state.Category) {
		state = state.WithCategory(query.CategoryAll)
	}
	a.query = state

	a.openProduct = ""
	if a.catalog.Has(openProduct) {
		a.openProduct = openProduct
	}
}

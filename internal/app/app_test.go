package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/73ai/storefront/internal/cart"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/clock"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/metrics"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/query"
	"github.com/73ai/storefront/internal/settings"
	"github.com/73ai/storefront/internal/storage"
)

var start = time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC)

type harness struct {
	app     *App
	store   *storage.MemoryStorage
	clock   *clock.Fake
	metrics *metrics.Metrics
	notices []orders.Status
}

func newHarness(t *testing.T, store *storage.MemoryStorage) *harness {
	t.Helper()

	cat, err := catalog.LoadFile(filepath.Join("..", "catalog", "testdata", "products.json"))
	require.NoError(t, err)

	if store == nil {
		store = storage.NewMemoryStorage()
	}

	h := &harness{
		store:   store,
		clock:   clock.NewFake(start),
		metrics: metrics.New(),
	}

	h.app, err = New(context.Background(), DefaultConfig(), Deps{
		Catalog: cat,
		Storage: store,
		Clock:   h.clock,
		Metrics: h.metrics,
		Logger:  zerolog.Nop(),
		OnOrderTransition: func(o orders.Order, from orders.Status) {
			h.notices = append(h.notices, o.Status)
		},
	})
	require.NoError(t, err)
	t.Cleanup(h.app.Close)
	return h
}

func ids(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestNewRequiresCatalogAndStorage(t *testing.T) {
	_, err := New(context.Background(), DefaultConfig(), Deps{Storage: storage.NewMemoryStorage()})
	assert.Error(t, err)

	cat, _ := catalog.New(nil)
	_, err = New(context.Background(), DefaultConfig(), Deps{Catalog: cat})
	assert.Error(t, err)
}

func TestBrowse(t *testing.T) {
	h := newHarness(t, nil)
	a := h.app

	require.NoError(t, a.SetCategory("indoor"))
	a.SetSort(query.SortPriceAsc)
	assert.Equal(t, []string{"p2", "p1", "p9", "p3"}, ids(a.View().Items))

	a.SetFilters(query.Filters{InStockOnly: true})
	assert.Equal(t, []string{"p2", "p1", "p9"}, ids(a.View().Items))
	assert.Equal(t, "category=indoor&sort=price-asc", a.URL())

	a.ResetFilters()
	assert.Equal(t, 4, a.View().Total)

	err := a.SetCategory("cacti")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Equal(t, "indoor", a.Query().Category)

	require.NoError(t, a.SetCategory(query.CategoryAll))
	a.SetPage(2)
	a.SetSearch("palm")
	assert.Equal(t, 1, a.Query().Page, "search resets the page")
}

func TestURLSync(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	a := h.app

	a.LoadURL(ctx, "?category=succulents&sort=rating&product=p4")
	assert.Equal(t, "succulents", a.Query().Category)
	assert.Equal(t, query.SortRating, a.Query().Sort)
	assert.Equal(t, "p4", a.OpenProductID())
	assert.Equal(t, []string{"p4"}, ids(a.RecentlyViewed()))
	assert.Equal(t, "category=succulents&sort=rating&product=p4", a.URL())

	a.LoadURL(ctx, "?category=bogus&page=zero&product=nope")
	assert.Equal(t, query.CategoryAll, a.Query().Category)
	assert.Equal(t, 1, a.Query().Page)
	assert.Empty(t, a.OpenProductID())
	assert.Equal(t, "", a.URL())
}

func TestCheckoutLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	a := h.app

	_, err := a.AddToCart(ctx, "p1", 2)
	require.NoError(t, err)
	_, err = a.AddToCart(ctx, "p3", 1)
	require.True(t, errors.Is(err, errs.ErrOutOfStock))

	_, err = a.Checkout(ctx, orders.Delivery{})
	require.True(t, errors.Is(err, errs.ErrMissingDelivery))

	require.NoError(t, a.Settings().SetAddress(ctx, settings.Address{Phone: "9000000000", Address: "4 Leaf St"}))
	o, err := a.Checkout(ctx, orders.Delivery{})
	require.NoError(t, err)
	assert.Equal(t, 1498.0, o.Total)
	assert.Equal(t, "4 Leaf St", o.Delivery.Address)
	assert.Equal(t, cart.Totals{}, a.Cart().Totals())

	h.clock.Advance(25 * time.Second)
	got, err := a.Orders().Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, got.Status)
	assert.Equal(t, []orders.Status{orders.StatusProcessing, orders.StatusShipped, orders.StatusDelivered}, h.notices)

	expected := `
# HELP storefront_order_transitions_total Order status changes by target status
# TYPE storefront_order_transitions_total counter
storefront_order_transitions_total{to="Delivered"} 1
storefront_order_transitions_total{to="Processing"} 1
storefront_order_transitions_total{to="Shipped"} 1
# HELP storefront_orders_outstanding Orders with a pending status transition
# TYPE storefront_orders_outstanding gauge
storefront_orders_outstanding 0
`
	assert.NoError(t, testutil.GatherAndCompare(h.metrics.Registry(), strings.NewReader(expected),
		"storefront_order_transitions_total", "storefront_orders_outstanding"))
}

func TestBestSellersSurviveCartClear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	a := h.app

	_, err := a.AddToCart(ctx, "p2", 3)
	require.NoError(t, err)
	_, err = a.AddToCart(ctx, "p1", 1)
	require.NoError(t, err)
	require.NoError(t, a.ClearCart(ctx))

	assert.Equal(t, []string{"p2", "p1"}, ids(a.BestSellers(BestSellerCount)))
	assert.Equal(t, []string{"p2"}, ids(a.BestSellers(1)))
	assert.Equal(t, "p12", a.NewArrivals(NewArrivalCount)[0].ID)
}

func TestCurrencyIsDisplayOnly(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	a := h.app

	_, err := a.AddToCart(ctx, "p2", 1)
	require.NoError(t, err)

	assert.Equal(t, "₹499.00", a.Format(a.Cart().Totals().Amount))
	require.NoError(t, a.Settings().SetCurrency(ctx, "USD"))
	assert.Equal(t, "$5.99", a.Format(a.Cart().Totals().Amount))
	assert.Equal(t, 499.0, a.Cart().Totals().Amount)
}

func TestCorruptSliceIsRecovered(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	require.NoError(t, store.Set(ctx, storage.KeyWishlist, []byte("not json")))

	h := newHarness(t, store)
	assert.Empty(t, h.app.Wishlist().Items())

	expected := `
# HELP storefront_persistence_recoveries_total Stored slices reset to their default after a read or decode failure
# TYPE storefront_persistence_recoveries_total counter
storefront_persistence_recoveries_total{key="storefront:wishlist"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(h.metrics.Registry(), strings.NewReader(expected), "storefront_persistence_recoveries_total"))

	in, err := h.app.ToggleWishlist(ctx, "p5")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestRestartResumesOrders(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()

	first := newHarness(t, store)
	_, err := first.app.AddToCart(ctx, "p9", 1)
	require.NoError(t, err)
	o, err := first.app.Checkout(ctx, orders.Delivery{Phone: "1", Address: "2"})
	require.NoError(t, err)
	first.app.Close()

	// the second process starts at the same fake time and catches up once advanced
	second := newHarness(t, store)
	got, err := second.app.Orders().Get(o.ShortID())
	require.NoError(t, err)
	assert.Equal(t, orders.StatusProcessing, got.Status)
	assert.True(t, second.app.Cart().Empty())

	second.clock.Advance(10 * time.Second)
	got, _ = second.app.Orders().Get(o.ID)
	assert.Equal(t, orders.StatusShipped, got.Status)

	_, err = second.app.CancelOrder(ctx, o.ID)
	assert.True(t, errors.Is(err, errs.ErrInvalidTransition))
}

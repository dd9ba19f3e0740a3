// Package app holds the single application-state container. Every
// storefront operation goes through an App; callers must not use it from
// more than one goroutine at a time.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/cart"
	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/clock"
	"github.com/73ai/storefront/internal/currency"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/metrics"
	"github.com/73ai/storefront/internal/orders"
	"github.com/73ai/storefront/internal/query"
	"github.com/73ai/storefront/internal/recent"
	"github.com/73ai/storefront/internal/settings"
	"github.com/73ai/storefront/internal/storage"
	"github.com/73ai/storefront/internal/wishlist"
)

// Curated row sizes
const (
	BestSellerCount     = 5
	NewArrivalCount     = 10
	RecommendationCount = 3
)

type Config struct {
	Orders      orders.Config
	RecentLimit int
}

func DefaultConfig() Config {
	return Config{
		Orders:      orders.DefaultConfig(),
		RecentLimit: recent.DefaultLimit,
	}
}

// Deps are the collaborators an App is built from. Catalog and Storage are
// required.
type Deps struct {
	Catalog *catalog.Catalog
	Storage storage.Storage
	Clock   clock.Clock
	Metrics *metrics.Metrics
	Logger  zerolog.Logger

	// OnOrderTransition is called after every order status change,
	// including timer-driven ones.
	OnOrderTransition func(o orders.Order, from orders.Status)
}

type App struct {
	catalog    *catalog.Catalog
	slices     *storage.Slices
	cart       *cart.Manager
	popularity *cart.Popularity
	wishlist   *wishlist.Manager
	recent     *recent.List
	orders     *orders.Engine
	settings   *settings.Store
	metrics    *metrics.Metrics
	log        zerolog.Logger

	onTransition func(o orders.Order, from orders.Status)

	query       query.State
	openProduct string
}

// New wires every manager, loads each persisted slice and resumes pending
// orders. Corrupt slices start from their defaults.
func New(ctx context.Context, cfg Config, deps Deps) (*App, error) {
	if deps.Catalog == nil {
		return nil, errors.New("app: catalog is required")
	}
	if deps.Storage == nil {
		return nil, errors.New("app: storage is required")
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}

	a := &App{
		catalog:      deps.Catalog,
		metrics:      deps.Metrics,
		log:          deps.Logger,
		onTransition: deps.OnOrderTransition,
		query:        query.DefaultState(),
	}

	var onReset storage.RecoveryHook
	if a.metrics != nil {
		onReset = a.metrics.Recovery
	}
	a.slices = storage.NewSlices(deps.Storage, a.log, onReset)

	a.popularity = cart.NewPopularity(a.slices, a.log)
	a.cart = cart.NewManager(a.catalog, a.slices, a.popularity, a.log)
	a.wishlist = wishlist.NewManager(a.catalog, a.slices, a.log)
	a.recent = recent.New(a.slices, cfg.RecentLimit, a.log)
	a.settings = settings.NewStore(a.slices, a.log)

	orderConfig := cfg.Orders
	orderConfig.OnTransition = a.orderTransition
	a.orders = orders.NewEngine(a.cart, a.slices, deps.Clock, orderConfig, a.log)

	a.settings.Load(ctx)
	a.popularity.Load(ctx)
	a.cart.Load(ctx)
	a.wishlist.Load(ctx)
	a.recent.Load(ctx)
	a.orders.Load(ctx)

	if err := a.orders.Resume(ctx); err != nil {
		a.log.Warn().Err(err).Msg("resumed orders not persisted")
	}

	a.refreshGauges()
	return a, nil
}

// Close stops pending order timers. The storage is owned by the caller.
func (a *App) Close() {
	a.orders.Close()
}

func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

func (a *App) Cart() *cart.Manager {
	return a.cart
}

func (a *App) Popularity() *cart.Popularity {
	return a.popularity
}

func (a *App) Wishlist() *wishlist.Manager {
	return a.wishlist
}

func (a *App) Orders() *orders.Engine {
	return a.orders
}

func (a *App) Settings() *settings.Store {
	return a.settings
}

// Storage returns the backend the slices are persisted in.
func (a *App) Storage() storage.Storage {
	return a.slices.Storage()
}

// Format renders a base-currency amount in the shopper's currency.
func (a *App) Format(amount float64) string {
	return currency.Format(amount, a.settings.Currency())
}

// AddToCart adds qty units of id to the cart and returns the new line quantity.
func (a *App) AddToCart(ctx context.Context, id string, qty int) (int, error) {
	n, err := a.cart.Add(ctx, id, qty)
	a.recordAddition(err)
	a.refreshGauges()
	return n, err
}

func (a *App) UpdateCartQuantity(ctx context.Context, id string, delta int) (int, error) {
	n, err := a.cart.UpdateQuantity(ctx, id, delta)
	a.refreshGauges()
	return n, err
}

func (a *App) RemoveFromCart(ctx context.Context, id string) error {
	err := a.cart.Remove(ctx, id)
	a.refreshGauges()
	return err
}

func (a *App) ClearCart(ctx context.Context) error {
	err := a.cart.Clear(ctx)
	a.refreshGauges()
	return err
}

// ToggleWishlist flips id's wishlist membership and returns the new state.
func (a *App) ToggleWishlist(ctx context.Context, id string) (bool, error) {
	return a.wishlist.Toggle(ctx, id)
}

// Checkout places an order for the cart. Missing delivery fields are taken
// from the saved address in the settings.
func (a *App) Checkout(ctx context.Context, delivery orders.Delivery) (orders.Order, error) {
	saved := a.settings.Get().Address
	if delivery.Phone == "" {
		delivery.Phone = saved.Phone
	}
	if delivery.Address == "" {
		delivery.Address = saved.Address
	}

	o, err := a.orders.Create(ctx, delivery)
	a.refreshGauges()
	return o, err
}

func (a *App) CancelOrder(ctx context.Context, ref string) (orders.Order, error) {
	o, err := a.orders.Cancel(ctx, ref)
	a.refreshGauges()
	return o, err
}

// BestSellers returns up to n catalog products ordered by popularity.
// Counted products no longer in the catalog are skipped.
func (a *App) BestSellers(n int) []catalog.Product {
	var out []catalog.Product
	for _, entry := range a.popularity.Top(-1) {
		if len(out) == n {
			break
		}
		if p, ok := a.catalog.Get(entry.ProductID); ok {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) NewArrivals(n int) []catalog.Product {
	return a.catalog.NewArrivals(n)
}

// RecentlyViewed resolves the recently viewed ids, skipping stale ones.
func (a *App) RecentlyViewed() []catalog.Product {
	return a.resolve(a.recent.Items())
}

// WishlistProducts resolves the wishlist, skipping stale ids.
func (a *App) WishlistProducts() []catalog.Product {
	return a.resolve(a.wishlist.Items())
}

func (a *App) Recommendations(id string) []catalog.Product {
	return a.catalog.Recommendations(id, a.popularity, RecommendationCount)
}

func (a *App) resolve(ids []string) []catalog.Product {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := a.catalog.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) orderTransition(o orders.Order, from orders.Status) {
	if a.metrics != nil {
		a.metrics.OrderTransition(string(o.Status))
	}
	if from != "" {
		a.refreshGauges()
	}
	if a.onTransition != nil {
		a.onTransition(o, from)
	}
}

func (a *App) recordAddition(err error) {
	if a.metrics == nil {
		return
	}

	result := metrics.ResultAdded
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrOutOfStock):
		result = metrics.ResultOutOfStock
	case errors.Is(err, errs.ErrInsufficientStock):
		result = metrics.ResultInsufficient
	case errors.Is(err, errs.ErrNotFound):
		result = metrics.ResultNotFound
	case errors.Is(err, errs.ErrInvalidQuantity):
		result = metrics.ResultInvalid
	default:
		result = metrics.ResultError
	}
	a.metrics.CartAddition(result)
}

func (a *App) refreshGauges() {
	if a.metrics == nil || a.orders == nil {
		return
	}
	a.metrics.SetCartItems(a.cart.Totals().ItemCount)
	a.metrics.SetOrdersOutstanding(a.orders.Pending())
}

// Describe is a one-line summary for logs.
func (a *App) Describe() string {
	t := a.cart.Totals()
	return fmt.Sprintf("%d products, %d in cart (%s), %d orders",
		a.catalog.Len(), t.ItemCount, a.Format(t.Amount), len(a.orders.List()))
}

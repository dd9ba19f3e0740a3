// Package orders runs the order lifecycle: checkout, the delayed
// Processing → Shipped → Delivered transitions, and cancellation.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/cart"
	"github.com/73ai/storefront/internal/clock"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/storage"
)

// ErrCartNotCleared is returned alongside a created order when the cart
// could not be emptied afterwards. The order itself is durable.
var ErrCartNotCleared = errors.New("order placed but cart was not cleared")

// TransitionFunc observes every status an order enters, including the
// initial Processing.
type TransitionFunc func(o Order, from Status)

type Config struct {
	ShipDelay    time.Duration // creation → Shipped
	DeliverDelay time.Duration // creation → Delivered
	OnTransition TransitionFunc
}

func DefaultConfig() Config {
	return Config{
		ShipDelay:    10 * time.Second,
		DeliverDelay: 25 * time.Second,
	}
}

// Engine owns the order list. It is not safe for concurrent use: callers
// serialize access, typically through a clock.Loop that also delivers the
// timer callbacks.
type Engine struct {
	cart   *cart.Manager
	slices *storage.Slices
	clock  clock.Clock
	config Config
	log    zerolog.Logger

	orders []Order // newest first
	timers map[string][]clock.Timer
}

func NewEngine(c *cart.Manager, slices *storage.Slices, clk clock.Clock, config Config, log zerolog.Logger) *Engine {
	defaults := DefaultConfig()
	if config.ShipDelay <= 0 {
		config.ShipDelay = defaults.ShipDelay
	}
	if config.DeliverDelay <= 0 {
		config.DeliverDelay = defaults.DeliverDelay
	}
	if config.DeliverDelay < config.ShipDelay {
		config.DeliverDelay = config.ShipDelay
	}

	return &Engine{
		cart:   c,
		slices: slices,
		clock:  clk,
		config: config,
		log:    log.With().Str("component", "orders").Logger(),
		timers: make(map[string][]clock.Timer),
	}
}

// Load restores persisted orders, dropping entries without an id or with an
// unknown status. It does not schedule timers; call Resume for that.
func (e *Engine) Load(ctx context.Context) {
	var stored []Order
	if !e.slices.Load(ctx, storage.KeyOrders, &stored) {
		e.orders = nil
		return
	}

	e.orders = make([]Order, 0, len(stored))
	for _, o := range stored {
		if o.ID == "" || !o.Status.Valid() {
			e.log.Warn().Str("order", o.ID).Str("status", string(o.Status)).Msg("dropping unreadable order")
			continue
		}
		e.orders = append(e.orders, o)
	}
}

// Resume catches persisted orders up with the time that passed while the
// process was not running. Overdue transitions are applied at once and the
// remaining ones are scheduled relative to each order's creation time.
func (e *Engine) Resume(ctx context.Context) error {
	now := e.clock.Now()
	changed := false

	for i := range e.orders {
		o := &e.orders[i]
		if o.Status.Terminal() {
			continue
		}

		elapsed := now.Sub(o.CreatedAt)
		if o.Status == StatusProcessing && elapsed >= e.config.ShipDelay {
			from := e.apply(o, StatusShipped, o.CreatedAt.Add(e.config.ShipDelay))
			e.notify(*o, from)
			changed = true
		}
		if o.Status == StatusShipped && elapsed >= e.config.DeliverDelay {
			from := e.apply(o, StatusDelivered, o.CreatedAt.Add(e.config.DeliverDelay))
			e.notify(*o, from)
			changed = true
		}

		if !o.Status.Terminal() {
			e.schedule(*o)
		}
	}

	if changed {
		return e.save(ctx)
	}
	return nil
}

// Create places an order for the current cart contents and clears the cart.
// The order is persisted and scheduled before the cart is touched, so a
// failure to clear the cart returns the order together with ErrCartNotCleared.
func (e *Engine) Create(ctx context.Context, delivery Delivery) (Order, error) {
	delivery.Phone = strings.TrimSpace(delivery.Phone)
	delivery.Address = strings.TrimSpace(delivery.Address)
	if delivery.Phone == "" {
		return Order{}, errs.MissingDelivery("phone")
	}
	if delivery.Address == "" {
		return Order{}, errs.MissingDelivery("address")
	}

	items := e.cart.Items()
	if len(items) == 0 {
		return Order{}, errs.ErrEmptyCart
	}

	now := e.clock.Now()
	id, err := newOrderID(now)
	if err != nil {
		return Order{}, err
	}

	var total float64
	for _, item := range items {
		total += item.Subtotal
	}

	o := Order{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     items,
		Total:     total,
		Status:    StatusProcessing,
		Delivery:  delivery,
	}

	e.orders = append([]Order{o}, e.orders...)
	if err := e.save(ctx); err != nil {
		e.orders = e.orders[1:]
		return Order{}, err
	}

	e.schedule(o)
	e.notify(o, "")

	e.log.Info().
		Str("order", o.ID).
		Int("items", o.ItemCount()).
		Float64("total", o.Total).
		Msg("order placed")

	if err := e.cart.Clear(ctx); err != nil {
		e.log.Warn().Err(err).Str("order", o.ID).Msg("cart not cleared after checkout")
		return o.clone(), fmt.Errorf("%w: %v", ErrCartNotCleared, err)
	}

	return o.clone(), nil
}

// Cancel moves a Processing order to Cancelled and stops its timers.
func (e *Engine) Cancel(ctx context.Context, ref string) (Order, error) {
	i, err := e.lookup(ref)
	if err != nil {
		return Order{}, err
	}

	o := &e.orders[i]
	if !o.Status.CanTransition(StatusCancelled) {
		return o.clone(), errs.InvalidTransition(o.ShortID(), string(o.Status), string(StatusCancelled))
	}

	e.stopTimers(o.ID)
	from := e.apply(o, StatusCancelled, e.clock.Now())

	e.log.Info().Str("order", o.ID).Msg("order cancelled")

	if err := e.save(ctx); err != nil {
		return o.clone(), err
	}
	e.notify(*o, from)
	return o.clone(), nil
}

// Get finds an order by full id or by its short id.
func (e *Engine) Get(ref string) (Order, error) {
	i, err := e.lookup(ref)
	if err != nil {
		return Order{}, err
	}
	return e.orders[i].clone(), nil
}

// List returns every order, newest first.
func (e *Engine) List() []Order {
	out := make([]Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o.clone())
	}
	return out
}

// Pending reports how many orders still have timers scheduled.
func (e *Engine) Pending() int {
	return len(e.timers)
}

// Close stops every scheduled transition.
func (e *Engine) Close() {
	for id := range e.timers {
		e.stopTimers(id)
	}
}

func (e *Engine) lookup(ref string) (int, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return -1, errs.NotFound("order", ref)
	}

	for i, o := range e.orders {
		if o.ID == ref {
			return i, nil
		}
	}

	match := -1
	for i, o := range e.orders {
		if o.ShortID() == ref {
			if match >= 0 {
				return -1, errs.NotFound("order", ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, errs.NotFound("order", ref)
	}
	return match, nil
}

// schedule arms the outstanding transitions for o, measured from its
// creation time.
func (e *Engine) schedule(o Order) {
	e.stopTimers(o.ID)

	elapsed := e.clock.Now().Sub(o.CreatedAt)
	var timers []clock.Timer

	if o.Status == StatusProcessing {
		timers = append(timers, e.clock.AfterFunc(e.config.ShipDelay-elapsed, func() {
			e.advance(o.ID, StatusProcessing, StatusShipped)
		}))
	}
	timers = append(timers, e.clock.AfterFunc(e.config.DeliverDelay-elapsed, func() {
		e.advance(o.ID, StatusShipped, StatusDelivered)
	}))

	e.timers[o.ID] = timers
}

// advance is the timer callback. The order's status is checked again at
// fire time; a firing that no longer matches is skipped.
func (e *Engine) advance(id string, from, to Status) {
	i, err := e.lookup(id)
	if err != nil {
		e.log.Debug().Str("order", id).Msg("timer fired for unknown order")
		return
	}

	o := &e.orders[i]
	if o.Status != from {
		e.log.Debug().
			Str("order", id).
			Str("status", string(o.Status)).
			Str("skipped", string(to)).
			Msg("stale order timer")
		return
	}

	e.apply(o, to, e.clock.Now())
	if to.Terminal() {
		e.stopTimers(id)
	}

	e.log.Info().Str("order", id).Str("status", string(to)).Msg("order status changed")

	if err := e.save(context.Background()); err != nil {
		e.log.Error().Err(err).Str("order", id).Msg("order status not persisted")
	}
	e.notify(*o, from)
}

func (e *Engine) apply(o *Order, to Status, at time.Time) Status {
	from := o.Status
	o.Status = to
	o.UpdatedAt = at
	return from
}

func (e *Engine) stopTimers(id string) {
	for _, t := range e.timers[id] {
		t.Stop()
	}
	delete(e.timers, id)
}

func (e *Engine) notify(o Order, from Status) {
	if e.config.OnTransition != nil {
		e.config.OnTransition(o.clone(), from)
	}
}

func (e *Engine) save(ctx context.Context) error {
	orders := e.orders
	if orders == nil {
		orders = []Order{}
	}
	if err := e.slices.Save(ctx, storage.KeyOrders, orders); err != nil {
		return fmt.Errorf("orders: %w", err)
	}
	return nil
}

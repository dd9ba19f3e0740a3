// Package cart reconciles the shopper's cart against catalog stock.
package cart

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/storage"
)

// Line is one persisted cart entry
type Line struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"qty"`
}

// Item is a cart line resolved against the catalog
type Item struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

// Totals summarises the resolvable lines of the cart
type Totals struct {
	ItemCount int     `json:"itemCount"`
	Amount    float64 `json:"amount"`
}

// Manager owns the cart lines. Every successful mutation is persisted as a
// whole-value overwrite. A failed save is returned, but the in-memory change
// is kept.
type Manager struct {
	catalog    *catalog.Catalog
	slices     *storage.Slices
	popularity *Popularity
	log        zerolog.Logger

	lines []Line
}

func NewManager(cat *catalog.Catalog, slices *storage.Slices, popularity *Popularity, log zerolog.Logger) *Manager {
	return &Manager{
		catalog:    cat,
		slices:     slices,
		popularity: popularity,
		log:        log.With().Str("component", "cart").Logger(),
	}
}

// Load replaces the in-memory cart with the persisted one. Lines with a
// non-positive quantity are dropped and duplicate ids are merged; lines
// referencing products missing from the catalog are kept.
func (m *Manager) Load(ctx context.Context) {
	var stored []Line
	if !m.slices.Load(ctx, storage.KeyCart, &stored) {
		m.lines = nil
		return
	}

	m.lines = normalize(stored)
	if len(m.lines) != len(stored) {
		m.log.Debug().
			Int("stored", len(stored)).
			Int("kept", len(m.lines)).
			Msg("normalized persisted cart")
	}
}

func normalize(stored []Line) []Line {
	lines := make([]Line, 0, len(stored))
	index := make(map[string]int, len(stored))

	for _, l := range stored {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(lines)
		lines = append(lines, l)
	}
	return lines
}

// Add puts qty more units of id in the cart and returns the new line
// quantity. The popularity counter grows by qty on success.
func (m *Manager) Add(ctx context.Context, id string, qty int) (int, error) {
	p, ok := m.catalog.Get(id)
	if !ok {
		return 0, errs.NotFound("product", id)
	}
	if p.Stock == 0 {
		return 0, errs.OutOfStock(id, p.Name)
	}
	if qty < 1 {
		return 0, errs.InvalidQuantity(id, qty)
	}

	current := m.Quantity(id)
	if current+qty > p.Stock {
		return current, errs.InsufficientStock(id, p.Name, p.Stock-current)
	}

	newQty := current + qty
	m.set(id, newQty)

	if err := m.save(ctx); err != nil {
		return newQty, err
	}
	if err := m.popularity.Record(ctx, id, qty); err != nil {
		return newQty, err
	}

	m.log.Debug().Str("product", id).Int("qty", newQty).Msg("added to cart")
	return newQty, nil
}

// UpdateQuantity changes the line for id by delta and returns the new
// quantity. A result of zero or less removes the line. Updating an id that
// is not in the cart does nothing.
func (m *Manager) UpdateQuantity(ctx context.Context, id string, delta int) (int, error) {
	current := m.Quantity(id)
	if current == 0 {
		return 0, nil
	}

	newQty := current + delta
	if newQty <= 0 {
		return 0, m.Remove(ctx, id)
	}

	if delta > 0 {
		p, ok := m.catalog.Get(id)
		if !ok {
			return current, errs.NotFound("product", id)
		}
		if newQty > p.Stock {
			return current, errs.InsufficientStock(id, p.Name, p.Stock-current)
		}
	}

	m.set(id, newQty)
	return newQty, m.save(ctx)
}

// Remove drops the line for id, if any.
func (m *Manager) Remove(ctx context.Context, id string) error {
	for i, l := range m.lines {
		if l.ProductID == id {
			m.lines = append(m.lines[:i:i], m.lines[i+1:]...)
			break
		}
	}
	return m.save(ctx)
}

// Clear empties the cart. Popularity is not affected.
func (m *Manager) Clear(ctx context.Context) error {
	m.lines = nil
	return m.save(ctx)
}

// Totals sums effective price times quantity over lines whose product still
// resolves. Stale lines are skipped.
func (m *Manager) Totals() Totals {
	var t Totals
	for _, item := range m.Items() {
		t.ItemCount += item.Quantity
		t.Amount += item.Subtotal
	}
	return t
}

// Items resolves the cart against the catalog, skipping stale lines.
// The result is a copy and does not alias the cart.
func (m *Manager) Items() []Item {
	items := make([]Item, 0, len(m.lines))
	for _, l := range m.lines {
		p, ok := m.catalog.Get(l.ProductID)
		if !ok {
			continue
		}
		items = append(items, Item{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  l.Quantity,
			UnitPrice: p.EffectivePrice,
			Subtotal:  p.EffectivePrice * float64(l.Quantity),
		})
	}
	return items
}

// Lines returns a copy of the raw lines in insertion order, stale ones included.
func (m *Manager) Lines() []Line {
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// Quantity returns the quantity of id in the cart, or 0.
func (m *Manager) Quantity(id string) int {
	for _, l := range m.lines {
		if l.ProductID == id {
			return l.Quantity
		}
	}
	return 0
}

func (m *Manager) Empty() bool {
	return len(m.lines) == 0
}

func (m *Manager) set(id string, qty int) {
	for i := range m.lines {
		if m.lines[i].ProductID == id {
			m.lines[i].Quantity = qty
			return
		}
	}
	m.lines = append(m.lines, Line{ProductID: id, Quantity: qty})
}

func (m *Manager) save(ctx context.Context) error {
	lines := m.lines
	if lines == nil {
		lines = []Line{}
	}
	if err := m.slices.Save(ctx, storage.KeyCart, lines); err != nil {
		m.log.Warn().Err(err).Msg("cart not persisted")
		return fmt.Errorf("cart: %w", err)
	}
	return nil
}

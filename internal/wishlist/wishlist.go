// Package wishlist keeps the shopper's ordered set of saved products.
package wishlist

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/storage"
)

type Manager struct {
	catalog *catalog.Catalog
	slices  *storage.Slices
	log     zerolog.Logger

	ids []string
}

func NewManager(cat *catalog.Catalog, slices *storage.Slices, log zerolog.Logger) *Manager {
	return &Manager{
		catalog: cat,
		slices:  slices,
		log:     log.With().Str("component", "wishlist").Logger(),
	}
}

// Load restores the persisted wishlist, dropping empty and repeated ids.
func (m *Manager) Load(ctx context.Context) {
	var stored []string
	if !m.slices.Load(ctx, storage.KeyWishlist, &stored) {
		m.ids = nil
		return
	}

	seen := make(map[string]bool, len(stored))
	m.ids = make([]string, 0, len(stored))
	for _, id := range stored {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		m.ids = append(m.ids, id)
	}
}

// Toggle adds id when absent and removes it when present. It returns
// whether id is in the wishlist afterwards. Only additions are checked
// against the catalog.
func (m *Manager) Toggle(ctx context.Context, id string) (bool, error) {
	if m.Contains(id) {
		return false, m.Remove(ctx, id)
	}

	if !m.catalog.Has(id) {
		return false, errs.NotFound("product", id)
	}

	m.ids = append(m.ids, id)
	return true, m.save(ctx)
}

// Remove drops id. Unknown ids are ignored.
func (m *Manager) Remove(ctx context.Context, id string) error {
	for i, existing := range m.ids {
		if existing == id {
			m.ids = append(m.ids[:i:i], m.ids[i+1:]...)
			return m.save(ctx)
		}
	}
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	m.ids = nil
	return m.save(ctx)
}

func (m *Manager) Contains(id string) bool {
	for _, existing := range m.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Items returns the wishlist ids in the order they were added.
func (m *Manager) Items() []string {
	out := make([]string, len(m.ids))
	copy(out, m.ids)
	return out
}

func (m *Manager) Len() int {
	return len(m.ids)
}

func (m *Manager) save(ctx context.Context) error {
	ids := m.ids
	if ids == nil {
		ids = []string{}
	}
	if err := m.slices.Save(ctx, storage.KeyWishlist, ids); err != nil {
		m.log.Warn().Err(err).Msg("wishlist not persisted")
		return fmt.Errorf("wishlist: %w", err)
	}
	return nil
}

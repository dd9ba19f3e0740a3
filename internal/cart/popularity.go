package cart

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/storage"
)

// Popularity counts units ever added to a cart, per product. Counts only grow.
type Popularity struct {
	slices *storage.Slices
	log    zerolog.Logger
	counts map[string]int
}

// Entry is one product's popularity count
type Entry struct {
	ProductID string `json:"id"`
	Count     int    `json:"count"`
}

func NewPopularity(slices *storage.Slices, log zerolog.Logger) *Popularity {
	return &Popularity{
		slices: slices,
		log:    log.With().Str("component", "popularity").Logger(),
		counts: make(map[string]int),
	}
}

// Load replaces the counters with the persisted ones. Negative counts are
// clamped to zero and a stored null starts from empty counters.
func (p *Popularity) Load(ctx context.Context) {
	stored := make(map[string]int)
	if !p.slices.Load(ctx, storage.KeyPopularity, &stored) || stored == nil {
		stored = make(map[string]int)
	}

	for id, n := range stored {
		if n < 0 {
			stored[id] = 0
		}
	}
	p.counts = stored
}

// Record adds qty to the count for id. Non-positive quantities are ignored.
func (p *Popularity) Record(ctx context.Context, id string, qty int) error {
	if qty <= 0 {
		return nil
	}
	p.counts[id] += qty

	if err := p.slices.Save(ctx, storage.KeyPopularity, p.counts); err != nil {
		p.log.Warn().Err(err).Msg("popularity not persisted")
		return fmt.Errorf("popularity: %w", err)
	}
	return nil
}

// Count implements catalog.Counter.
func (p *Popularity) Count(id string) int {
	return p.counts[id]
}

// Snapshot returns a copy of all counters
func (p *Popularity) Snapshot() map[string]int {
	out := make(map[string]int, len(p.counts))
	for id, n := range p.counts {
		out[id] = n
	}
	return out
}

// Top returns up to n products with a positive count, highest first.
// Equal counts are ordered by id.
func (p *Popularity) Top(n int) []Entry {
	entries := make([]Entry, 0, len(p.counts))
	for id, c := range p.counts {
		if c > 0 {
			entries = append(entries, Entry{ProductID: id, Count: c})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ProductID < entries[j].ProductID
	})

	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

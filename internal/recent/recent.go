// Package recent tracks the most recently opened product details.
package recent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/storage"
)

// DefaultLimit is how many products the list keeps
const DefaultLimit = 4

// List is a most-recent-first list of product ids without repeats.
type List struct {
	slices *storage.Slices
	log    zerolog.Logger
	limit  int

	ids []string
}

func New(slices *storage.Slices, limit int, log zerolog.Logger) *List {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &List{
		slices: slices,
		limit:  limit,
		log:    log.With().Str("component", "recent").Logger(),
	}
}

func (l *List) Load(ctx context.Context) {
	var stored []string
	if !l.slices.Load(ctx, storage.KeyRecentlyViewed, &stored) {
		l.ids = nil
		return
	}

	l.ids = nil
	for i := len(stored) - 1; i >= 0; i-- {
		if stored[i] != "" {
			l.push(stored[i])
		}
	}
}

// Push moves id to the front, evicting the oldest entry past the limit.
func (l *List) Push(ctx context.Context, id string) error {
	l.push(id)

	if err := l.slices.Save(ctx, storage.KeyRecentlyViewed, l.ids); err != nil {
		l.log.Warn().Err(err).Msg("recently viewed not persisted")
		return fmt.Errorf("recently viewed: %w", err)
	}
	return nil
}

func (l *List) push(id string) {
	ids := make([]string, 0, l.limit)
	ids = append(ids, id)
	for _, existing := range l.ids {
		if existing != id && len(ids) < l.limit {
			ids = append(ids, existing)
		}
	}
	l.ids = ids
}

// Items returns the ids, most recent first.
func (l *List) Items() []string {
	out := make([]string, len(l.ids))
	copy(out, l.ids)
	return out
}

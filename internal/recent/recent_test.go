package recent

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/73ai/storefront/internal/storage"
)

func TestPushMovesToFront(t *testing.T) {
	ctx := context.Background()
	slices := storage.NewSlices(storage.NewMemoryStorage(), zerolog.Nop(), nil)
	l := New(slices, 0, zerolog.Nop())

	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		require.NoError(t, l.Push(ctx, id))
	}
	assert.Equal(t, []string{"p5", "p4", "p3", "p2"}, l.Items())

	require.NoError(t, l.Push(ctx, "p3"))
	assert.Equal(t, []string{"p3", "p5", "p4", "p2"}, l.Items())

	reloaded := New(slices, DefaultLimit, zerolog.Nop())
	reloaded.Load(ctx)
	assert.Equal(t, l.Items(), reloaded.Items())
}

func TestLoadEnforcesLimit(t *testing.T) {
	ctx := context.Background()
	slices := storage.NewSlices(storage.NewMemoryStorage(), zerolog.Nop(), nil)
	require.NoError(t, slices.Save(ctx, storage.KeyRecentlyViewed, []string{"a", "b", "a", "c", "d", "e"}))

	l := New(slices, 3, zerolog.Nop())
	l.Load(ctx)

	assert.Equal(t, []string{"a", "b", "c"}, l.Items())
}

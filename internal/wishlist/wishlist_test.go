package wishlist

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/73ai/storefront/internal/catalog"
	"github.com/73ai/storefront/internal/errs"
	"github.com/73ai/storefront/internal/storage"
)

func newManager(t *testing.T) (*Manager, *storage.Slices) {
	t.Helper()

	cat, err := catalog.New([]catalog.Product{
		{ID: "p1", Name: "Fern", Price: 10, Stock: 1},
		{ID: "p2", Name: "Ivy", Price: 12, Stock: 0},
	})
	require.NoError(t, err)

	slices := storage.NewSlices(storage.NewMemoryStorage(), zerolog.Nop(), nil)
	return NewManager(cat, slices, zerolog.Nop()), slices
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	in, err := m.Toggle(ctx, "p2")
	require.NoError(t, err)
	assert.True(t, in, "out of stock products can be saved")

	in, err = m.Toggle(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, in)
	assert.Equal(t, []string{"p2", "p1"}, m.Items())

	in, err = m.Toggle(ctx, "p2")
	require.NoError(t, err)
	assert.False(t, in)
	assert.Equal(t, []string{"p1"}, m.Items())

	_, err = m.Toggle(ctx, "nope")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Equal(t, 1, m.Len())
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	m, _ := newManager(t)
	assert.NoError(t, m.Remove(context.Background(), "gone"))
	assert.Empty(t, m.Items())
}

func TestLoadDedupes(t *testing.T) {
	ctx := context.Background()
	m, slices := newManager(t)

	require.NoError(t, slices.Save(ctx, storage.KeyWishlist, []string{"p1", "", "p1", "retired"}))
	m.Load(ctx)

	assert.Equal(t, []string{"p1", "retired"}, m.Items())

	in, err := m.Toggle(ctx, "retired")
	require.NoError(t, err)
	assert.False(t, in, "stale ids can still be removed")
}

func TestClearPersists(t *testing.T) {
	ctx := context.Background()
	m, slices := newManager(t)

	_, err := m.Toggle(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx))

	var stored []string
	require.True(t, slices.Load(ctx, storage.KeyWishlist, &stored))
	assert.Empty(t, stored)
}

package cart

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

type fixture struct {
	store      *storage.MemoryStorage
	slices     *storage.Slices
	popularity *Popularity
	cart       *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.New([]catalog.Product{
		{ID: "A", Name: "Alpha", Category: "x", Price: 100, Stock: 2},
		{ID: "B", Name: "Beta", Category: "x", Price: 50, Stock: 0},
		{ID: "C", Name: "Gamma", Category: "y", Price: 40, SalePrice: catalog.Float(30), Stock: 5},
	})
	require.NoError(t, err)

	store := storage.NewMemoryStorage()
	slices := storage.NewSlices(store, zerolog.Nop(), nil)
	popularity := NewPopularity(slices, zerolog.Nop())

	return &fixture{
		store:      store,
		slices:     slices,
		popularity: popularity,
		cart:       NewManager(cat, slices, popularity, zerolog.Nop()),
	}
}

func TestAddStockReconciliation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	qty, err := f.cart.Add(ctx, "A", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)
	assert.Equal(t, []Line{{ProductID: "A", Quantity: 1}}, f.cart.Lines())

	_, err = f.cart.Add(ctx, "A", 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInsufficientStock))
	remaining, ok := errs.Remaining(err)
	require.True(t, ok)
	assert.Equal(t, 1, remaining)
	assert.Contains(t, err.Error(), "only 1 of Alpha available")
	assert.Equal(t, 1, f.cart.Quantity("A"), "failed add must not change the line")

	_, err = f.cart.Add(ctx, "B", 1)
	assert.True(t, errors.Is(err, errs.ErrOutOfStock))

	_, err = f.cart.Add(ctx, "missing", 1)
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = f.cart.Add(ctx, "C", 0)
	assert.True(t, errors.Is(err, errs.ErrInvalidQuantity))

	assert.Equal(t, 1, f.popularity.Count("A"))
	assert.Equal(t, 0, f.popularity.Count("B"))
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cart.Add(ctx, "C", 2)
	require.NoError(t, err)

	tests := []struct {
		name    string
		delta   int
		want    int
		wantErr error
	}{
		{"increment", 1, 3, nil},
		{"beyond stock", 3, 3, errs.ErrInsufficientStock},
		{"decrement", -2, 1, nil},
		{"to zero removes", -1, 0, nil},
		{"absent line is ignored", 1, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, err := f.cart.UpdateQuantity(ctx, "C", tt.delta)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, qty)
			assert.Equal(t, tt.want, f.cart.Quantity("C"))
		})
	}

	assert.Empty(t, f.cart.Lines(), "zero quantity lines are not stored")
}

func TestTotalsSkipStaleLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.slices.Save(ctx, storage.KeyCart, []Line{
		{ProductID: "A", Quantity: 2},
		{ProductID: "removed", Quantity: 4},
		{ProductID: "C", Quantity: 1},
	}))
	f.cart.Load(ctx)

	assert.Len(t, f.cart.Lines(), 3)
	assert.Equal(t, Totals{ItemCount: 3, Amount: 230}, f.cart.Totals())
	assert.Len(t, f.cart.Items(), 2)
}

func TestLoadNormalizesLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.slices.Save(ctx, storage.KeyCart, []Line{
		{ProductID: "A", Quantity: 1},
		{ProductID: "C", Quantity: 0},
		{ProductID: "A", Quantity: 1},
		{ProductID: "", Quantity: 3},
	}))
	f.cart.Load(ctx)

	assert.Equal(t, []Line{{ProductID: "A", Quantity: 2}}, f.cart.Lines())
}

func TestLoadCorruptCartStartsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Set(ctx, storage.KeyCart, []byte(`{"A":`)))
	f.cart.Load(ctx)

	assert.True(t, f.cart.Empty())
	assert.Equal(t, Totals{}, f.cart.Totals())
}

func TestLoadNullPopularityStartsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Set(ctx, storage.KeyPopularity, []byte("null")))
	f.popularity.Load(ctx)

	assert.NotPanics(t, func() {
		_, err := f.cart.Add(ctx, "A", 1)
		assert.NoError(t, err)
	})
	assert.Equal(t, 1, f.popularity.Count("A"))
	assert.Equal(t, map[string]int{"A": 1}, f.popularity.Snapshot())
}

func TestLineAboveStockReportsNoneRemaining(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// stock for A dropped to 2 after this line was saved
	require.NoError(t, f.slices.Save(ctx, storage.KeyCart, []Line{{ProductID: "A", Quantity: 3}}))
	f.cart.Load(ctx)

	_, err := f.cart.Add(ctx, "A", 1)
	require.True(t, errors.Is(err, errs.ErrInsufficientStock))
	remaining, ok := errs.Remaining(err)
	require.True(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Contains(t, err.Error(), "only 0 of Alpha available")

	qty, err := f.cart.UpdateQuantity(ctx, "A", 1)
	require.True(t, errors.Is(err, errs.ErrInsufficientStock))
	assert.Equal(t, 3, qty)
	remaining, _ = errs.Remaining(err)
	assert.Equal(t, 0, remaining)
	assert.NotContains(t, err.Error(), "-1")
}

func TestClearKeepsPopularity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cart.Add(ctx, "C", 3)
	require.NoError(t, err)
	require.NoError(t, f.cart.Clear(ctx))

	assert.True(t, f.cart.Empty())
	assert.Equal(t, 3, f.popularity.Count("C"))

	_, err = f.cart.Add(ctx, "C", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, f.popularity.Count("C"))
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.cart.Add(ctx, "C", 2)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, "A", 1)
	require.NoError(t, err)

	reloaded := newFixture(t)
	reloaded.slices = f.slices
	reloaded.popularity = NewPopularity(f.slices, zerolog.Nop())
	reloaded.popularity.Load(ctx)
	reloaded.cart = NewManager(f.cart.catalog, f.slices, reloaded.popularity, zerolog.Nop())
	reloaded.cart.Load(ctx)

	assert.Equal(t, f.cart.Lines(), reloaded.cart.Lines())
	assert.Equal(t, 2, reloaded.popularity.Count("C"))
}

func TestSaveFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.FailSet = map[string]error{storage.KeyCart: errors.New("disk full")}

	qty, err := f.cart.Add(ctx, "C", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 1, qty)
	assert.Equal(t, 1, f.cart.Quantity("C"))
}

func TestPopularityTop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.popularity.Record(ctx, "p2", 3))
	require.NoError(t, f.popularity.Record(ctx, "p1", 5))
	require.NoError(t, f.popularity.Record(ctx, "p3", 3))
	require.NoError(t, f.popularity.Record(ctx, "p4", 0))

	assert.Equal(t, []Entry{
		{ProductID: "p1", Count: 5},
		{ProductID: "p2", Count: 3},
	}, f.popularity.Top(2))
	assert.Len(t, f.popularity.Top(10), 3)

	snap := f.popularity.Snapshot()
	snap["p1"] = 0
	assert.Equal(t, 5, f.popularity.Count("p1"))
}

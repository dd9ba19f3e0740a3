package settings

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/73ai/storefront/internal/storage"
)

func newStore(t *testing.T) (*Store, *storage.MemoryStorage) {
	t.Helper()
	mem := storage.NewMemoryStorage()
	return NewStore(storage.NewSlices(mem, zerolog.Nop(), nil), zerolog.Nop()), mem
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		stored string
		want   UserSettings
	}{
		{
			name:   "absent",
			stored: "",
			want:   Defaults(),
		},
		{
			name:   "partial",
			stored: `{"currency":"USD","notifications":{"emailPromo":false}}`,
			want: UserSettings{
				Currency:      "USD",
				Notifications: Notifications{EmailPromo: false, OrderUpdates: true},
			},
		},
		{
			name:   "unknown keys ignored",
			stored: `{"theme":"dark","reduceMotion":true}`,
			want: UserSettings{
				Currency:      "INR",
				ReduceMotion:  true,
				Notifications: Notifications{EmailPromo: true, OrderUpdates: true},
			},
		},
		{
			name:   "unsupported currency",
			stored: `{"currency":"JPY"}`,
			want:   Defaults(),
		},
		{
			name:   "corrupt",
			stored: `{"currency":`,
			want:   Defaults(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mem := newStore(t)
			if tt.stored != "" {
				require.NoError(t, mem.Set(ctx, storage.KeyUserSettings, []byte(tt.stored)))
			}
			s.Load(ctx)
			assert.Equal(t, tt.want, s.Get())
		})
	}
}

func TestSettersPersist(t *testing.T) {
	ctx := context.Background()
	s, mem := newStore(t)

	require.NoError(t, s.SetCurrency(ctx, "eur"))
	require.NoError(t, s.SetReduceMotion(ctx, true))
	require.NoError(t, s.SetNotification(ctx, NotifyOrderUpdates, false))
	require.NoError(t, s.SetAddress(ctx, Address{Phone: " 555 ", Address: "1 Fern Row"}))

	assert.Error(t, s.SetCurrency(ctx, "GBP"))
	assert.Error(t, s.SetNotification(ctx, "sms", true))

	reloaded := NewStore(storage.NewSlices(mem, zerolog.Nop(), nil), zerolog.Nop())
	reloaded.Load(ctx)

	assert.Equal(t, UserSettings{
		Currency:      "EUR",
		ReduceMotion:  true,
		Notifications: Notifications{EmailPromo: true, OrderUpdates: false},
		Address:       Address{Phone: "555", Address: "1 Fern Row"},
	}, reloaded.Get())
	assert.True(t, reloaded.Get().Address.Complete())
}

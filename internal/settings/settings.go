// Package settings persists the shopper's preferences.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/currency"
	"github.com/73ai/storefront/internal/storage"
)

// Notification toggle names
const (
	NotifyEmailPromo   = "emailPromo"
	NotifyOrderUpdates = "orderUpdates"
)

type Notifications struct {
	EmailPromo   bool `json:"emailPromo"`
	OrderUpdates bool `json:"orderUpdates"`
}

type Address struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Complete reports whether both delivery fields are filled in.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Phone) != "" && strings.TrimSpace(a.Address) != ""
}

type UserSettings struct {
	Currency      string        `json:"currency"`
	ReduceMotion  bool          `json:"reduceMotion"`
	Notifications Notifications `json:"notifications"`
	Address       Address       `json:"address"`
}

func Defaults() UserSettings {
	return UserSettings{
		Currency: currency.Base,
		Notifications: Notifications{
			EmailPromo:   true,
			OrderUpdates: true,
		},
	}
}

// Store holds the current settings and writes every change through.
type Store struct {
	slices  *storage.Slices
	log     zerolog.Logger
	current UserSettings
}

func NewStore(slices *storage.Slices, log zerolog.Logger) *Store {
	return &Store{
		slices:  slices,
		log:     log.With().Str("component", "settings").Logger(),
		current: Defaults(),
	}
}

// Load merges the persisted settings onto the defaults. Missing keys keep
// their default; an unsupported currency falls back to the base currency.
func (s *Store) Load(ctx context.Context) {
	loaded := Defaults()
	s.slices.Load(ctx, storage.KeyUserSettings, &loaded)

	if !currency.Supported(loaded.Currency) {
		s.log.Warn().Str("currency", loaded.Currency).Msg("unsupported stored currency, using base")
		loaded.Currency = currency.Base
	}
	s.current = loaded
}

// Get returns a copy of the current settings
func (s *Store) Get() UserSettings {
	return s.current
}

func (s *Store) Currency() string {
	return s.current.Currency
}

func (s *Store) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currency.Supported(code) {
		return fmt.Errorf("unsupported currency %q (supported: %s)", code, strings.Join(currency.Codes(), ", "))
	}
	s.current.Currency = code
	return s.save(ctx)
}

func (s *Store) SetReduceMotion(ctx context.Context, on bool) error {
	s.current.ReduceMotion = on
	return s.save(ctx)
}

func (s *Store) SetNotification(ctx context.Context, kind string, on bool) error {
	switch kind {
	case NotifyEmailPromo:
		s.current.Notifications.EmailPromo = on
	case NotifyOrderUpdates:
		s.current.Notifications.OrderUpdates = on
	default:
		return fmt.Errorf("unknown notification %q (expected %s or %s)", kind, NotifyEmailPromo, NotifyOrderUpdates)
	}
	return s.save(ctx)
}

func (s *Store) SetAddress(ctx context.Context, addr Address) error {
	s.current.Address = Address{
		Phone:   strings.TrimSpace(addr.Phone),
		Address: strings.TrimSpace(addr.Address),
	}
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	if err := s.slices.Save(ctx, storage.KeyUserSettings, s.current); err != nil {
		s.log.Warn().Err(err).Msg("settings not persisted")
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}

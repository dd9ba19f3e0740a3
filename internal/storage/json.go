package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/73ai/storefront/internal/errs"
)

// RecoveryHook is notified whenever a slice is reset to its default.
type RecoveryHook func(key string, err error)

// Slices loads and saves JSON-encoded state slices on top of a Storage.
// Load never fails: absent, unreadable or corrupt values leave the caller's
// default in place.
type Slices struct {
	storage Storage
	log     zerolog.Logger
	onReset RecoveryHook
}

func NewSlices(storage Storage, log zerolog.Logger, onReset RecoveryHook) *Slices {
	return &Slices{storage: storage, log: log, onReset: onReset}
}

// Load decodes the value under key into dst. It reports whether a stored
// value was applied. dst must already hold the slice's default.
func (s *Slices) Load(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.storage.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.recover(key, fmt.Errorf("read: %w", err))
		return false
	}

	if err := decodeInto(data, dst); err != nil {
		s.recover(key, errs.Corrupt(key, err))
		return false
	}

	return true
}

// Save overwrites the value under key with the JSON encoding of v.
func (s *Slices) Save(ctx context.Context, key string, v interface{}) error {
	data, err := MarshalValue(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := s.storage.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *Slices) recover(key string, err error) {
	s.log.Warn().Err(err).Str("key", key).Msg("resetting stored slice to default")
	if s.onReset != nil {
		s.onReset(key, err)
	}
}

// Storage returns the underlying storage
func (s *Slices) Storage() Storage {
	return s.storage
}

func MarshalValue(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func UnmarshalValue(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// decodeInto decodes into a scratch copy of *dst and assigns it only on
// success, so a failed decode never leaves dst half-written. Struct defaults
// are carried into the copy so missing fields keep their default values.
func decodeInto(data []byte, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", dst)
	}

	elem := rv.Elem()
	tmp := reflect.New(elem.Type())
	if elem.Kind() == reflect.Struct {
		tmp.Elem().Set(elem)
	}

	if err := json.Unmarshal(data, tmp.Interface()); err != nil {
		return err
	}

	elem.Set(tmp.Elem())
	return nil
}

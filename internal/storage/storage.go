// Package storage is the persistence adapter of the storefront. Every slice of
// shopper state is stored as one whole JSON value under a named key.
package storage

import (
	"context"
	"io"
)

// Storage is a synchronous whole-value key-value store.
// Get returns ErrKeyNotFound for absent keys.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)

	// Keys lists stored keys starting with prefix, in key order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// Key prefix shared by every storefront slice
const Prefix = "storefront:"

const (
	KeyCart           = Prefix + "cart"            // cart -> []cart.Line
	KeyWishlist       = Prefix + "wishlist"        // wishlist -> []productID
	KeyPopularity     = Prefix + "popularity"      // popularity -> map[productID]units
	KeyOrders         = Prefix + "orders"          // orders -> []orders.Order
	KeyRecentlyViewed = Prefix + "recently-viewed" // recently-viewed -> []productID
	KeyUserSettings   = Prefix + "user-settings"   // user-settings -> settings.UserSettings
)

// AllKeys lists the slice keys in load order.
func AllKeys() []string {
	return []string{
		KeyUserSettings,
		KeyCart,
		KeyWishlist,
		KeyPopularity,
		KeyOrders,
		KeyRecentlyViewed,
	}
}

// StorageError wraps storage-specific errors
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return "storage " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var (
	ErrKeyNotFound = &StorageError{Op: "get", Err: io.EOF}
	ErrClosed      = &StorageError{Op: "use", Err: io.ErrClosedPipe}
)

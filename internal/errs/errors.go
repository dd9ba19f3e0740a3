// Package errs defines the error kinds reported by the storefront engine.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Storefront error kinds
var (
	ErrNotFound           = errors.New("not found")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingDelivery    = errors.New("delivery details missing")
	ErrPersistenceCorrupt = errors.New("persisted value is corrupt")
)

// Error carries the details of a failed catalog, cart or order operation.
// Unwrap resolves to the matching sentinel so callers can use errors.Is.
type Error struct {
	Kind      error  `json:"-"`
	Message   string `json:"message"`
	ID        string `json:"id,omitempty"`
	Remaining int    `json:"remaining,omitempty"`
	Cause     error  `json:"-"`
}

func (e *Error) Error() string {
	var parts []string

	if e.Kind != nil {
		parts = append(parts, fmt.Sprintf("[%s]", e.Kind))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NotFound reports an unknown product or order id.
func NotFound(what, id string) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("%s %q not found", what, id),
		ID:      id,
	}
}

// OutOfStock reports a product with zero stock.
func OutOfStock(id, name string) *Error {
	return &Error{
		Kind:    ErrOutOfStock,
		Message: fmt.Sprintf("%s is out of stock", name),
		ID:      id,
	}
}

// InsufficientStock reports how many more units of name can still be added.
// A negative remainder, from a line above current stock, reads as zero.
func InsufficientStock(id, name string, remaining int) *Error {
	if remaining < 0 {
		remaining = 0
	}
	return &Error{
		Kind:      ErrInsufficientStock,
		Message:   fmt.Sprintf("only %d of %s available", remaining, name),
		ID:        id,
		Remaining: remaining,
	}
}

func InvalidQuantity(id string, qty int) *Error {
	return &Error{
		Kind:    ErrInvalidQuantity,
		Message: fmt.Sprintf("quantity %d is not allowed", qty),
		ID:      id,
	}
}

// InvalidTransition reports an illegal order status change.
func InvalidTransition(id, from, to string) *Error {
	return &Error{
		Kind:    ErrInvalidTransition,
		Message: fmt.Sprintf("order %s cannot move from %s to %s", id, from, to),
		ID:      id,
	}
}

// MissingDelivery reports a checkout without the named delivery field.
func MissingDelivery(field string) *Error {
	return &Error{
		Kind:    ErrMissingDelivery,
		Message: fmt.Sprintf("a delivery %s is required", field),
	}
}

// Corrupt wraps an unparseable stored value.
func Corrupt(key string, cause error) *Error {
	return &Error{
		Kind:    ErrPersistenceCorrupt,
		Message: fmt.Sprintf("stored value for %q could not be decoded", key),
		ID:      key,
		Cause:   cause,
	}
}

// Remaining extracts the remaining-stock count from an InsufficientStock error.
func Remaining(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && errors.Is(e.Kind, ErrInsufficientStock) {
		return e.Remaining, true
	}
	return 0, false
}

// IsUserError reports whether err should be presented to the shopper as a message.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingDelivery)
}

// IsRecoverable reports whether err is handled locally by resetting state.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrPersistenceCorrupt)
}

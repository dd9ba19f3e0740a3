package orders

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/73ai/storefront/internal/cart"
)

// Delivery is where an order ships to
type Delivery struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Order is a frozen snapshot of the cart at checkout plus its lifecycle
// status. Total is in the base currency and never recomputed.
type Order struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Items     []cart.Item `json:"items"`
	Total     float64     `json:"total"`
	Status    Status      `json:"status"`
	Delivery  Delivery    `json:"delivery"`
}

// ShortID is the human-facing order number.
func (o Order) ShortID() string {
	if len(o.ID) <= 6 {
		return o.ID
	}
	return o.ID[len(o.ID)-6:]
}

// ItemCount is the number of units in the order.
func (o Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

func (o Order) clone() Order {
	items := make([]cart.Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// newOrderID returns a version 7 UUID whose timestamp is the order's
// creation time rather than the wall clock.
func newOrderID(createdAt time.Time) (string, error) {
	id, err := uuid.NewRandomFromReader(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate order id: %w", err)
	}

	ms := uint64(createdAt.UnixMilli())
	id[0] = byte(ms >> 40)
	id[1] = byte(ms >> 32)
	id[2] = byte(ms >> 24)
	id[3] = byte(ms >> 16)
	id[4] = byte(ms >> 8)
	id[5] = byte(ms)
	id[6] = 0x70 | (id[6] & 0x0f)

	return id.String(), nil
}

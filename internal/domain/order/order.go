package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an order lookup matches no record.
var ErrNotFound = errors.New("order not found")

// Order represents a customer order together with its persisted lines.
type Order struct {
	ID         string
	CustomerID string
	Items      []OrderItem
	CreatedAt  time.Time
}

// OrderItem is a single persisted order line. Price is captured at order time
// so later catalog price changes never affect existing orders.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order and all of its lines as a single unit and
	// returns the stored order with the lines exactly as persisted.
	Create(ctx context.Context, o *Order) (*Order, error)
	// GetByID returns the order with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)
}

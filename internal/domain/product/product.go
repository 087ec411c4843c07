package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// QuantityUpdate sets a product's stock level to an absolute value.
type QuantityUpdate struct {
	ID       string
	Quantity int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs returns the products matching any of the given IDs.
	// Unmatched IDs are silently omitted from the result.
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	// UpdateQuantities applies each update as an absolute set, not a delta.
	UpdateQuantities(ctx context.Context, updates []QuantityUpdate) error
}

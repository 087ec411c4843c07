package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/storefront-api/internal/domain/customer"
	"github.com/xenking/storefront-api/internal/domain/product"
)

// Sentinel errors for order validation.
var (
	ErrEmptyItems = errors.New("order items required")
	ErrNoProducts = errors.New("none of the requested products exist")
)

// CustomerNotFoundError indicates the ordering customer does not exist.
type CustomerNotFoundError struct {
	CustomerID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer %s not found", e.CustomerID)
}

// ProductsNotFoundError indicates some (but not all) requested products do
// not exist. A partial match is a hard failure.
type ProductsNotFoundError struct {
	ProductIDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.ProductIDs, ", "))
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// InsufficientStockError indicates a requested quantity exceeds the stock
// available for a product.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// LineRequest is a requested order line: a product and how many of it.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// PlaceOrderRequest holds the input for placing an order.
type PlaceOrderRequest struct {
	CustomerID string
	Items      []LineRequest
}

// Service encapsulates order placement business logic.
type Service struct {
	customers customer.Repository
	products  product.Repository
	orders    Repository
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	customers customer.Repository,
	products product.Repository,
	orders Repository,
) *Service {
	return &Service{
		customers: customers,
		products:  products,
		orders:    orders,
	}
}

// PlaceOrder validates the customer and the requested lines against a single
// stock snapshot, persists the order atomically, and decrements stock based
// on the lines the repository reports as persisted.
//
// Validation order is fixed: customer, empty input, quantity, product
// existence, completeness, stock. The first violated condition wins. Every
// validation failure returns before any write.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	cust, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, &CustomerNotFoundError{CustomerID: req.CustomerID}
		}
		return nil, errors.Wrap(err, "get customer")
	}

	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	// Validate quantities and collect product IDs.
	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
		ids[i] = item.ProductID
	}

	// Batch fetch all products in a single query. This is the one stock and
	// price snapshot every following step works from.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	if len(fetched) == 0 {
		return nil, ErrNoProducts
	}

	snapshot := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		snapshot[p.ID] = p
	}

	// Verify every requested product was found. All-or-nothing: one unknown
	// ID fails the whole order.
	var missing []string
	for _, item := range req.Items {
		if _, ok := snapshot[item.ProductID]; !ok {
			missing = append(missing, item.ProductID)
		}
	}
	if len(missing) > 0 {
		return nil, &ProductsNotFoundError{ProductIDs: missing}
	}

	// Stock check against the snapshot. Equal requested and available
	// quantity is permitted and draws stock to exactly zero.
	for _, item := range req.Items {
		p := snapshot[item.ProductID]
		if p.Quantity < item.Quantity {
			return nil, &InsufficientStockError{
				ProductID: p.ID,
				Requested: item.Quantity,
				Available: p.Quantity,
			}
		}
	}

	// Materialize lines with the snapshot price, not any later read.
	lines := make([]OrderItem, len(req.Items))
	for i, item := range req.Items {
		lines[i] = OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     snapshot[item.ProductID].Price,
		}
	}

	created, err := s.orders.Create(ctx, &Order{
		ID:         uuid.New().String(),
		CustomerID: cust.ID,
		Items:      lines,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Decrement stock from the lines the repository confirmed as persisted,
	// not from the raw request. Guards against a persistence layer that
	// drops or alters lines.
	updates := make([]product.QuantityUpdate, len(created.Items))
	for i, line := range created.Items {
		updates[i] = product.QuantityUpdate{
			ID:       line.ProductID,
			Quantity: snapshot[line.ProductID].Quantity - line.Quantity,
		}
	}
	if err := s.products.UpdateQuantities(ctx, updates); err != nil {
		return nil, errors.Wrap(err, "update product quantities")
	}

	return created, nil
}

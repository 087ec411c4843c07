package customer

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a customer lookup matches no record.
var ErrNotFound = errors.New("customer not found")

// Customer is a registered buyer identified by a unique email address.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Repository defines persistence operations for customers.
type Repository interface {
	// FindByEmail returns the customer registered with the given email,
	// or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	// GetByID returns the customer with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	// ListEmails returns the emails of all registered customers.
	ListEmails(ctx context.Context) ([]string, error)
}

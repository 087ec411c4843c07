package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/customer"
)

const (
	findCustomerByEmailSQL = `SELECT id, name, email, created_at FROM customers WHERE email = $1`

	getCustomerByIDSQL = `SELECT id, name, email, created_at FROM customers WHERE id = $1`

	insertCustomerSQL = `INSERT INTO customers (id, name, email) VALUES ($1, $2, $3) RETURNING created_at`

	listCustomerEmailsSQL = `SELECT email FROM customers`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// FindByEmail returns the customer registered with the given email.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, findCustomerByEmailSQL, email)
	if err != nil {
		return nil, errors.Wrap(err, "finding customer by email")
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrap(err, "finding customer by email")
	}
	return &c, nil
}

// GetByID returns a single customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, getCustomerByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting customer %q", id)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting customer %q", id)
	}
	return &c, nil
}

// Create persists a new customer. A unique constraint breach on the email
// column surfaces as customer.ErrDuplicateEmail, backstopping the service's
// point-in-time uniqueness check under concurrent registrations.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	err := r.pool.QueryRow(ctx, insertCustomerSQL, c.ID, c.Name, c.Email).Scan(&c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return customer.ErrDuplicateEmail
		}
		return errors.Wrapf(err, "creating customer %q", c.ID)
	}
	return nil
}

// ListEmails returns the emails of all registered customers.
func (r *CustomerRepository) ListEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, listCustomerEmailsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing customer emails")
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt)
	return c, err
}

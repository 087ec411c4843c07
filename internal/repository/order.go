package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-api/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, customer_id) VALUES ($1, $2) RETURNING created_at`

	insertOrderLineSQL = `INSERT INTO order_products (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4) RETURNING product_id, quantity, price`

	getOrderByIDSQL = `SELECT id, customer_id, created_at FROM orders WHERE id = $1`

	getOrderLinesSQL = `SELECT product_id, quantity, price FROM order_products WHERE order_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order row and all of its lines in one transaction and
// returns the order with the lines as the database stored them.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var createdAt time.Time
	if err := tx.QueryRow(ctx, insertOrderSQL, o.ID, o.CustomerID).Scan(&createdAt); err != nil {
		return nil, errors.Wrapf(err, "creating order %q", o.ID)
	}

	batch := &pgx.Batch{}
	for _, line := range o.Items {
		batch.Queue(insertOrderLineSQL, o.ID, line.ProductID, line.Quantity, line.Price)
	}
	br := tx.SendBatch(ctx, batch)

	items := make([]order.OrderItem, 0, len(o.Items))
	for range o.Items {
		var line order.OrderItem
		if err := br.QueryRow().Scan(&line.ProductID, &line.Quantity, &line.Price); err != nil {
			_ = br.Close()
			return nil, errors.Wrapf(err, "creating lines of order %q", o.ID)
		}
		items = append(items, line)
	}
	if err := br.Close(); err != nil {
		return nil, errors.Wrapf(err, "creating lines of order %q", o.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrapf(err, "committing order %q", o.ID)
	}

	return &order.Order{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Items:      items,
		CreatedAt:  createdAt,
	}, nil
}

// GetByID returns a single order with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, getOrderByIDSQL, id).Scan(&o.ID, &o.CustomerID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting order %q", id)
	}

	rows, err := r.pool.Query(ctx, getOrderLinesSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting lines of order %q", id)
	}
	o.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.OrderItem, error) {
		var line order.OrderItem
		err := row.Scan(&line.ProductID, &line.Quantity, &line.Price)
		return line, err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "getting lines of order %q", id)
	}

	return &o, nil
}

package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-api/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, price, quantity FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, price, quantity FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT id, name, price, quantity FROM products WHERE id = ANY($1)`

	updateProductQuantitySQL = `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting product %q", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %q", id)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// UpdateQuantities sets each product's stock level to the given absolute
// value, all updates in one round trip.
func (r *ProductRepository) UpdateQuantities(ctx context.Context, updates []product.QuantityUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(updateProductQuantitySQL, u.ID, u.Quantity)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, u := range updates {
		ct, err := br.Exec()
		if err != nil {
			return errors.Wrapf(err, "updating quantity of product %q", u.ID)
		}
		if ct.RowsAffected() == 0 {
			return errors.Wrapf(product.ErrNotFound, "updating quantity of product %q", u.ID)
		}
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var (
		p     product.Product
		price decimal.Decimal
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Quantity)
	p.Price = price
	return p, err
}

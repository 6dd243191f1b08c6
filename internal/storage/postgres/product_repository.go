package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slmbngl/order-management-api/internal/domain"
)

// ProductRepository serves both the catalog CRUD and the inventory ledger.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT id, name, price, stock_quantity FROM products ORDER BY id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	const query = `SELECT id, name, price, stock_quantity FROM products WHERE id = $1`
	return r.scanProduct(r.queryRow(ctx, query, id))
}

// GetProductForUpdate locks the product row until the surrounding
// transaction commits.
func (r *ProductRepository) GetProductForUpdate(ctx context.Context, id int64) (domain.Product, error) {
	const query = `SELECT id, name, price, stock_quantity FROM products WHERE id = $1 FOR UPDATE`
	return r.scanProduct(r.queryRow(ctx, query, id))
}

// GetProductsForUpdate locks the requested rows in ascending id order.
// Callers pass ids pre-sorted so every concurrent batch acquires locks in
// the same order.
func (r *ProductRepository) GetProductsForUpdate(ctx context.Context, ids []int64) ([]domain.Product, error) {
	const query = `
SELECT id, name, price, stock_quantity
FROM products
WHERE id = ANY($1)
ORDER BY id
FOR UPDATE`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) UpdateProductStock(ctx context.Context, id int64, stock int) error {
	const stmt = `UPDATE products SET stock_quantity = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) InsertProduct(ctx context.Context, p *domain.Product) error {
	const stmt = `
INSERT INTO products (name, price, stock_quantity)
VALUES ($1, $2, $3)
RETURNING id`

	if err := r.queryRow(ctx, stmt, p.Name, p.Price, p.StockQuantity).Scan(&p.ID); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p domain.Product) error {
	const stmt = `UPDATE products SET name = $2, price = $3, stock_quantity = $4 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, p.ID, p.Name, p.Price, p.StockQuantity)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	const stmt = `DELETE FROM products WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) CountOrderItemsByProduct(ctx context.Context, productID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM order_items WHERE product_id = $1`

	var n int
	if err := r.queryRow(ctx, query, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count order items: %w", err)
	}
	return n, nil
}

func (r *ProductRepository) scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ProductRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ProductRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slmbngl/order-management-api/internal/domain"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *CustomerRepository) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	const query = `SELECT id, first_name, last_name, email, user_id FROM customers ORDER BY id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	const query = `SELECT id, first_name, last_name, email, user_id FROM customers WHERE id = $1`

	var c domain.Customer
	err := r.queryRow(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) InsertCustomer(ctx context.Context, c *domain.Customer) error {
	const stmt = `
INSERT INTO customers (first_name, last_name, email, user_id)
VALUES ($1, $2, $3, $4)
RETURNING id`

	if err := r.queryRow(ctx, stmt, c.FirstName, c.LastName, c.Email, c.UserID).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) DeleteCustomer(ctx context.Context, id int64) error {
	const stmt = `DELETE FROM customers WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCustomerHasOrders
		}
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) CountOrdersByCustomer(ctx context.Context, customerID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE customer_id = $1`

	var n int
	if err := r.queryRow(ctx, query, customerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *CustomerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CustomerRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CustomerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slmbngl/order-management-api/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) GetCustomer(ctx context.Context, id int64) (domain.Customer, error) {
	const query = `SELECT id, first_name, last_name, email, user_id FROM customers WHERE id = $1`

	var c domain.Customer
	err := r.queryRow(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Customer{}, fmt.Errorf("%w: id %d", domain.ErrCustomerNotFound, id)
		}
		return domain.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

func (r *OrderRepository) GetCustomerByUserID(ctx context.Context, userID string) (domain.Customer, error) {
	const query = `SELECT id, first_name, last_name, email, user_id FROM customers WHERE user_id = $1`

	var c domain.Customer
	err := r.queryRow(ctx, query, userID).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("get customer by user: %w", err)
	}
	return c, nil
}

// InsertOrder persists the order and its items, filling in generated ids.
func (r *OrderRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	const orderStmt = `
INSERT INTO orders (customer_id, order_date, status, total_amount)
VALUES ($1, $2, $3, $4)
RETURNING id`

	err := r.queryRow(ctx, orderStmt, order.CustomerID, order.OrderDate, order.Status, order.TotalAmount).
		Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const itemStmt = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_amount)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := r.queryRow(ctx, itemStmt, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.LineAmount).
			Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	return r.getOrder(ctx, id, false)
}

// GetOrderForUpdate locks the order row for the rest of the transaction, so
// concurrent status changes and deletes on the same order serialize.
func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, id int64) (domain.Order, error) {
	return r.getOrder(ctx, id, true)
}

func (r *OrderRepository) getOrder(ctx context.Context, id int64, forUpdate bool) (domain.Order, error) {
	query := `
SELECT o.id, o.customer_id, o.order_date, o.status, o.total_amount,
       c.first_name || ' ' || c.last_name
FROM orders o
JOIN customers c ON c.id = o.customer_id
WHERE o.id = $1`
	if forUpdate {
		query += `
FOR UPDATE OF o`
	}

	var o domain.Order
	err := r.queryRow(ctx, query, id).
		Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.TotalAmount, &o.CustomerName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, id)
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.ListOrderItems(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	const query = `
SELECT o.id, o.customer_id, o.order_date, o.status, o.total_amount,
       c.first_name || ' ' || c.last_name
FROM orders o
JOIN customers c ON c.id = o.customer_id
ORDER BY o.id`

	return r.listOrders(ctx, query)
}

func (r *OrderRepository) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error) {
	const query = `
SELECT o.id, o.customer_id, o.order_date, o.status, o.total_amount,
       c.first_name || ' ' || c.last_name
FROM orders o
JOIN customers c ON c.id = o.customer_id
WHERE o.customer_id = $1
ORDER BY o.id`

	return r.listOrders(ctx, query, customerID)
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Status, &o.TotalAmount, &o.CustomerName); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.ListOrderItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *OrderRepository) ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const query = `
SELECT i.id, i.order_id, i.product_id, COALESCE(p.name, ''), i.quantity, i.unit_price, i.line_amount
FROM order_items i
LEFT JOIN products p ON p.id = i.product_id
WHERE i.order_id = $1
ORDER BY i.id`

	rows, err := r.query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineAmount); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes the items first, then the order. The schema cascades
// too; doing it explicitly keeps the ownership rule visible in code.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id int64) error {
	if _, err := r.exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	tag, err := r.exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

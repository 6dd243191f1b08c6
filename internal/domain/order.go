package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the aggregate root; it owns its items exclusively.
type Order struct {
	ID          int64
	CustomerID  int64
	OrderDate   time.Time
	Status      OrderStatus
	TotalAmount decimal.Decimal
	Items       []OrderItem

	// CustomerName is filled on reads that join the customer row.
	CustomerName string
}

// OrderItem references a product and carries the unit price snapshot taken
// at creation time. The snapshot never changes, even when the product's
// current price does.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineAmount  decimal.Decimal
}

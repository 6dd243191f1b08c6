package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slmbngl/order-management-api/internal/domain"
)

type Kind string

const (
	OrderCreated   Kind = "order.created"
	OrderCancelled Kind = "order.cancelled"
	OrderDeleted   Kind = "order.deleted"
)

// OrderEvent is the wire payload published on order lifecycle changes.
type OrderEvent struct {
	Kind        Kind            `json:"kind"`
	OrderID     int64           `json:"orderId"`
	CustomerID  int64           `json:"customerId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []OrderLine     `json:"items"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// FromOrder builds the event payload for an order snapshot.
func FromOrder(kind Kind, order domain.Order) OrderEvent {
	evt := OrderEvent{
		Kind:        kind,
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
	for _, item := range order.Items {
		evt.Items = append(evt.Items, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return evt
}

// Publisher emits order lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt OrderEvent) error
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }

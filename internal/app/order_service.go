package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/slmbngl/order-management-api/internal/clock"
	"github.com/slmbngl/order-management-api/internal/domain"
	"github.com/slmbngl/order-management-api/internal/events"
)

// OrderRepository is the persistence surface the order processor needs.
// WithTx runs fn inside a single transaction; every other method joins the
// transaction carried by ctx when one is present.
type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetCustomer(ctx context.Context, id int64) (domain.Customer, error)
	GetCustomerByUserID(ctx context.Context, userID string) (domain.Customer, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id int64) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64) ([]domain.Order, error)
	ListOrderItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderService orchestrates order creation, status transitions and deletion
// against the inventory ledger inside one unit of work per operation.
type OrderService struct {
	repo      OrderRepository
	ledger    *Ledger
	clock     clock.Clock
	publisher events.Publisher
	logger    *zap.Logger
}

func NewOrderService(repo OrderRepository, ledger *Ledger, clk clock.Clock, pub events.Publisher, logger *zap.Logger) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		repo:      repo,
		ledger:    ledger,
		clock:     clk,
		publisher: pub,
		logger:    logger,
	}
}

type CreateOrderInput struct {
	CustomerID int64
	Items      []Reservation
}

// CreateOrder validates the customer and every requested line, reserves
// stock, snapshots unit prices into the order items and persists order,
// items and decremented stock as one atomic unit. Nothing is visible if any
// step fails.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyOrder
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: product %d quantity %d",
				domain.ErrInvalidQuantity, it.ProductID, it.Quantity)
		}
	}

	var result domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		customer, err := s.repo.GetCustomer(txCtx, in.CustomerID)
		if err != nil {
			return err
		}

		lines, err := s.ledger.ReserveBatch(txCtx, in.Items)
		if err != nil {
			return err
		}

		order := domain.Order{
			CustomerID:   customer.ID,
			CustomerName: customer.FullName(),
			OrderDate:    s.clock.Now(),
			Status:       domain.StatusPending,
			TotalAmount:  decimal.Zero,
		}
		for _, line := range lines {
			amount := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				LineAmount:  amount,
			})
			order.TotalAmount = order.TotalAmount.Add(amount)
		}

		if err := s.repo.InsertOrder(txCtx, &order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.publish(ctx, events.OrderCreated, result)
	return result, nil
}

// UpdateStatus normalizes and validates the target status, then persists it.
// The transition into cancelled from any non-cancelled status releases the
// order's stock exactly once, in the same transaction as the status write;
// writing cancelled onto an already-cancelled order is a no-op for stock.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, rawStatus string) error {
	target, err := domain.ParseStatus(rawStatus)
	if err != nil {
		return err
	}

	var cancelled domain.Order
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransition(target) {
			return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, order.Status, target)
		}

		if target == domain.StatusCancelled && order.Status != domain.StatusCancelled {
			for _, item := range order.Items {
				if err := s.ledger.Release(txCtx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			cancelled = order
		}

		return s.repo.UpdateOrderStatus(txCtx, orderID, target)
	})
	if err != nil {
		return err
	}

	if cancelled.ID != 0 {
		s.publish(ctx, events.OrderCancelled, cancelled)
	}
	return nil
}

// Delete removes the order and its items, returning their stock to the
// ledger first. Deletion always returns inventory, independent of the
// cancellation rule.
func (s *OrderService) Delete(ctx context.Context, orderID int64) error {
	var deleted domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := s.ledger.Release(txCtx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		deleted = order
		return s.repo.DeleteOrder(txCtx, orderID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.OrderDeleted, deleted)
	return nil
}

func (s *OrderService) Get(ctx context.Context, orderID int64) (domain.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

// ListForUser returns the orders of the customer linked to the given
// identity principal. The caller identity arrives as an explicit parameter;
// the service never reads ambient request state.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	customer, err := s.repo.GetCustomerByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOrdersByCustomer(ctx, customer.ID)
}

func (s *OrderService) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	if _, err := s.repo.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListOrderItems(ctx, orderID)
}

// publish is best-effort and runs after commit; a broker failure must never
// fail the request that already committed.
func (s *OrderService) publish(ctx context.Context, kind events.Kind, order domain.Order) {
	if err := s.publisher.Publish(ctx, events.FromOrder(kind, order)); err != nil {
		s.logger.Warn("publish order event",
			zap.String("kind", string(kind)),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/slmbngl/order-management-api/internal/domain"
)

// LedgerRepository is the persistence surface the inventory ledger needs.
// All methods are expected to run inside the transaction carried by ctx;
// GetProductsForUpdate must lock the selected rows until commit.
type LedgerRepository interface {
	GetProductsForUpdate(ctx context.Context, ids []int64) ([]domain.Product, error)
	GetProductForUpdate(ctx context.Context, id int64) (domain.Product, error)
	UpdateProductStock(ctx context.Context, id int64, stock int) error
}

// Ledger is the single point of truth for product stock. Order logic never
// writes stock directly; it goes through Reserve/Release so the
// no-negative-stock invariant holds in one place.
type Ledger struct {
	repo   LedgerRepository
	logger *zap.Logger
}

func NewLedger(repo LedgerRepository, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{repo: repo, logger: logger}
}

// Reservation is one requested line of a batch reserve.
type Reservation struct {
	ProductID int64
	Quantity  int
}

// ReservedLine is the outcome of reserving one line: the product as loaded
// before the decrement, with its price in effect at reservation time.
type ReservedLine struct {
	Product   domain.Product
	Quantity  int
	UnitPrice decimal.Decimal
}

// ReserveBatch decrements stock for every requested line or none of them.
// Product rows are locked in ascending id order so concurrent batches
// touching the same products cannot deadlock. Each line is checked against
// the stock snapshot read once per product, so duplicate product ids in one
// batch are rejected rather than checked against stale counts.
func (l *Ledger) ReserveBatch(ctx context.Context, reqs []Reservation) ([]ReservedLine, error) {
	if len(reqs) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	seen := make(map[int64]struct{}, len(reqs))
	ids := make([]int64, 0, len(reqs))
	for _, r := range reqs {
		if r.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d quantity %d", domain.ErrInvalidQuantity, r.ProductID, r.Quantity)
		}
		if _, dup := seen[r.ProductID]; dup {
			return nil, fmt.Errorf("%w: product %d", domain.ErrDuplicateProduct, r.ProductID)
		}
		seen[r.ProductID] = struct{}{}
		ids = append(ids, r.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := l.repo.GetProductsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: product %d", domain.ErrProductNotFound, id)
		}
	}

	lines := make([]ReservedLine, 0, len(reqs))
	for _, r := range reqs {
		p := byID[r.ProductID]
		if p.StockQuantity < r.Quantity {
			return nil, fmt.Errorf("%w: product %q has %d, requested %d",
				domain.ErrInsufficientStock, p.Name, p.StockQuantity, r.Quantity)
		}
		lines = append(lines, ReservedLine{Product: p, Quantity: r.Quantity, UnitPrice: p.Price})
	}

	// All lines validated against the snapshot; stage the decrements.
	for _, line := range lines {
		if err := l.repo.UpdateProductStock(ctx, line.Product.ID, line.Product.StockQuantity-line.Quantity); err != nil {
			return nil, fmt.Errorf("reserve product %d: %w", line.Product.ID, err)
		}
	}
	return lines, nil
}

// Release returns quantity units to a product's stock. A missing product is
// not fatal: the owning order still has to be finalized, so the miss is
// logged and swallowed.
func (l *Ledger) Release(ctx context.Context, productID int64, quantity int) error {
	p, err := l.repo.GetProductForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			l.logger.Warn("release against missing product",
				zap.Int64("product_id", productID),
				zap.Int("quantity", quantity))
			return nil
		}
		return err
	}
	if err := l.repo.UpdateProductStock(ctx, productID, p.StockQuantity+quantity); err != nil {
		return fmt.Errorf("release product %d: %w", productID, err)
	}
	return nil
}

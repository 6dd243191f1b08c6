package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slmbngl/order-management-api/internal/domain"
)

func TestLedger_ReserveBatch(t *testing.T) {
	t.Parallel()

	t.Run("reserves every line or none", func(t *testing.T) {
		store := seedStore()
		ledger := NewLedger(store, nil)

		lines, err := ledger.ReserveBatch(context.Background(), []Reservation{
			{ProductID: 11, Quantity: 4},
			{ProductID: 10, Quantity: 5},
		})
		require.NoError(t, err)
		require.Len(t, lines, 2)

		// lines come back in request order with the price at reservation time
		require.Equal(t, int64(11), lines[0].Product.ID)
		require.True(t, lines[0].UnitPrice.Equal(price("19.50")))
		require.Equal(t, int64(10), lines[1].Product.ID)

		require.Equal(t, 0, store.products[10].StockQuantity)
		require.Equal(t, 4, store.products[11].StockQuantity)
	})

	t.Run("insufficient stock aborts before any write", func(t *testing.T) {
		store := seedStore()
		ledger := NewLedger(store, nil)

		_, err := ledger.ReserveBatch(context.Background(), []Reservation{
			{ProductID: 11, Quantity: 1},
			{ProductID: 10, Quantity: 6},
		})
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		require.Equal(t, 5, store.products[10].StockQuantity)
		require.Equal(t, 8, store.products[11].StockQuantity)
	})

	t.Run("missing product fails the batch", func(t *testing.T) {
		store := seedStore()
		ledger := NewLedger(store, nil)

		_, err := ledger.ReserveBatch(context.Background(), []Reservation{
			{ProductID: 10, Quantity: 1},
			{ProductID: 404, Quantity: 1},
		})
		require.ErrorIs(t, err, domain.ErrProductNotFound)
		require.Equal(t, 5, store.products[10].StockQuantity)
	})

	t.Run("duplicate product ids rejected", func(t *testing.T) {
		ledger := NewLedger(seedStore(), nil)

		_, err := ledger.ReserveBatch(context.Background(), []Reservation{
			{ProductID: 10, Quantity: 1},
			{ProductID: 10, Quantity: 1},
		})
		require.ErrorIs(t, err, domain.ErrDuplicateProduct)
	})

	t.Run("empty batch rejected", func(t *testing.T) {
		ledger := NewLedger(seedStore(), nil)

		_, err := ledger.ReserveBatch(context.Background(), nil)
		require.ErrorIs(t, err, domain.ErrEmptyOrder)
	})
}

func TestLedger_Release(t *testing.T) {
	t.Parallel()

	t.Run("increments stock", func(t *testing.T) {
		store := seedStore()
		ledger := NewLedger(store, nil)

		require.NoError(t, ledger.Release(context.Background(), 10, 3))
		require.Equal(t, 8, store.products[10].StockQuantity)
	})

	t.Run("missing product is swallowed", func(t *testing.T) {
		store := seedStore()
		ledger := NewLedger(store, nil)

		require.NoError(t, ledger.Release(context.Background(), 404, 3))
	})
}

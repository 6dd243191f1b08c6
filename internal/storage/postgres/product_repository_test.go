package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/slmbngl/order-management-api/internal/domain"
	"github.com/slmbngl/order-management-api/internal/testutil"
)

func TestProductRepository_CRUD(t *testing.T) {
	fx := testutil.NewFixture(t)
	repo := NewProductRepository(fx.Pool)

	p := domain.Product{Name: "Keyboard", Price: decimal.RequireFromString("49.90"), StockQuantity: 5}
	require.NoError(t, repo.InsertProduct(fx.Ctx, &p))
	require.NotZero(t, p.ID)

	got, err := repo.GetProduct(fx.Ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Keyboard", got.Name)
	require.True(t, got.Price.Equal(decimal.RequireFromString("49.90")))

	p.Name = "Mechanical Keyboard"
	p.StockQuantity = 7
	require.NoError(t, repo.UpdateProduct(fx.Ctx, p))

	got, err = repo.GetProduct(fx.Ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Mechanical Keyboard", got.Name)
	require.Equal(t, 7, got.StockQuantity)

	all, err := repo.ListProducts(fx.Ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, repo.DeleteProduct(fx.Ctx, p.ID))
	_, err = repo.GetProduct(fx.Ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	require.ErrorIs(t, repo.DeleteProduct(fx.Ctx, p.ID), domain.ErrProductNotFound)
	require.ErrorIs(t, repo.UpdateProduct(fx.Ctx, p), domain.ErrProductNotFound)
}

func TestProductRepository_DeleteReferencedProduct(t *testing.T) {
	fx := testutil.NewFixture(t)
	repo := NewProductRepository(fx.Pool)

	customerID := testutil.InsertCustomer(t, fx.Ctx, fx.Pool, "Ada", "Lovelace", "ada@example.com")
	productID := testutil.InsertProduct(t, fx.Ctx, fx.Pool, "Keyboard", decimal.RequireFromString("49.90"), 5)
	testutil.InsertOrder(t, fx.Ctx, fx.Pool, customerID, domain.StatusPending, []domain.OrderItem{
		{ProductID: productID, Quantity: 1, UnitPrice: decimal.RequireFromString("49.90")},
	})

	// The FK on order_items maps onto the business error.
	require.ErrorIs(t, repo.DeleteProduct(fx.Ctx, productID), domain.ErrProductInUse)

	n, err := repo.CountOrderItemsByProduct(fx.Ctx, productID)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestProductRepository_StockUpdates(t *testing.T) {
	fx := testutil.NewFixture(t)
	repo := NewProductRepository(fx.Pool)

	productID := testutil.InsertProduct(t, fx.Ctx, fx.Pool, "Keyboard", decimal.RequireFromString("49.90"), 5)

	require.NoError(t, repo.UpdateProductStock(fx.Ctx, productID, 2))
	require.Equal(t, 2, testutil.ProductStock(t, fx.Ctx, fx.Pool, productID))

	require.ErrorIs(t, repo.UpdateProductStock(fx.Ctx, 99999, 2), domain.ErrProductNotFound)
}

func TestProductRepository_GetProductsForUpdate(t *testing.T) {
	fx := testutil.NewFixture(t)
	repo := NewProductRepository(fx.Pool)

	a := testutil.InsertProduct(t, fx.Ctx, fx.Pool, "A", decimal.RequireFromString("1.00"), 1)
	b := testutil.InsertProduct(t, fx.Ctx, fx.Pool, "B", decimal.RequireFromString("2.00"), 2)

	err := repo.WithTx(fx.Ctx, func(txCtx context.Context) error {
		products, err := repo.GetProductsForUpdate(txCtx, []int64{a, b})
		require.NoError(t, err)
		require.Len(t, products, 2)
		require.Equal(t, a, products[0].ID)
		require.Equal(t, b, products[1].ID)

		// Missing ids simply come back absent.
		products, err = repo.GetProductsForUpdate(txCtx, []int64{a, 99999})
		require.NoError(t, err)
		require.Len(t, products, 1)
		return nil
	})
	require.NoError(t, err)
}

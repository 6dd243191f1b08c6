package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/slmbngl/order-management-api/internal/domain"
)

var errNegativePrice = errors.New("price must not be negative")
var errNegativeStock = errors.New("stock quantity must not be negative")
var errNameRequired = errors.New("product name is required")

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	InsertProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	CountOrderItemsByProduct(ctx context.Context, productID int64) (int, error)
}

// CatalogService is plain product CRUD. Stock edits here are administrative;
// the order flow only touches stock through the ledger.
type CatalogService struct {
	repo ProductRepository
}

func NewCatalogService(repo ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

type ProductInput struct {
	Name          string
	Price         decimal.Decimal
	StockQuantity int
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return errNameRequired
	}
	if in.Price.IsNegative() {
		return errNegativePrice
	}
	if in.StockQuantity < 0 {
		return errNegativeStock
	}
	return nil
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *CatalogService) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity}
	if err := s.repo.InsertProduct(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{ID: id, Name: in.Name, Price: in.Price, StockQuantity: in.StockQuantity}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Delete rejects removal of any product still referenced by order items.
// The schema restricts this too; the check here turns it into a clean
// business error instead of a constraint violation.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountOrderItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrProductInUse
	}
	return s.repo.DeleteProduct(ctx, id)
}

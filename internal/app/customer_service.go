package app

import (
	"context"
	"errors"

	"github.com/slmbngl/order-management-api/internal/domain"
)

var errEmailRequired = errors.New("email is required")
var errCustomerNameRequired = errors.New("first or last name is required")

type CustomerRepository interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id int64) (domain.Customer, error)
	InsertCustomer(ctx context.Context, c *domain.Customer) error
	DeleteCustomer(ctx context.Context, id int64) error
	CountOrdersByCustomer(ctx context.Context, customerID int64) (int, error)
}

// CustomerService is read-mostly CRUD; the order core only ever reads
// customers.
type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (domain.Customer, error) {
	return s.repo.GetCustomer(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (domain.Customer, error) {
	if in.Email == "" {
		return domain.Customer{}, errEmailRequired
	}
	if in.FirstName == "" && in.LastName == "" {
		return domain.Customer{}, errCustomerNameRequired
	}
	c := domain.Customer{FirstName: in.FirstName, LastName: in.LastName, Email: in.Email}
	if err := s.repo.InsertCustomer(ctx, &c); err != nil {
		return domain.Customer{}, err
	}
	return c, nil
}

// Delete refuses to remove a customer that still has orders, so order rows
// never dangle. Orders must be deleted (returning their stock) first.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetCustomer(ctx, id); err != nil {
		return err
	}
	n, err := s.repo.CountOrdersByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrCustomerHasOrders
	}
	return s.repo.DeleteCustomer(ctx, id)
}

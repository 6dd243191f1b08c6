package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/slmbngl/order-management-api/internal/clock"
	"github.com/slmbngl/order-management-api/internal/domain"
)

// UserRepository persists identity principals and, on registration, the
// linked customer record in the same transaction.
type UserRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	InsertUser(ctx context.Context, u domain.User) error
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	InsertCustomer(ctx context.Context, c *domain.Customer) error
}

// Service handles registration and login. Registration creates the user and
// its customer record atomically; the customer carries the user link used
// to scope "my orders".
type Service struct {
	repo   UserRepository
	tokens TokenStore
	clock  clock.Clock
}

func NewService(repo UserRepository, tokens TokenStore, clk clock.Clock) *Service {
	return &Service{repo: repo, tokens: tokens, clock: clk}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.Customer, error) {
	if in.Email == "" {
		return domain.Customer{}, domain.ErrInvalidCredentials
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return domain.Customer{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FirstName + " " + in.LastName,
		CreatedAt:    s.clock.Now(),
	}

	var customer domain.Customer
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.InsertUser(txCtx, user); err != nil {
			return err
		}
		customer = domain.Customer{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			UserID:    &user.ID,
		}
		return s.repo.InsertCustomer(txCtx, &customer)
	})
	if err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

type LoginInput struct {
	Email    string
	Password string
}

func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Same error for unknown email and bad password.
		return "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return "", domain.ErrInvalidCredentials
	}
	return s.tokens.Issue(ctx, user.ID)
}

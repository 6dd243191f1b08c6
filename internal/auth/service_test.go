package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slmbngl/order-management-api/internal/clock"
	"github.com/slmbngl/order-management-api/internal/domain"
)

type fakeUserRepo struct {
	users      map[string]domain.User // keyed by email
	customers  []domain.Customer
	insertErr  error
	nextCustID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	usersBefore := make(map[string]domain.User, len(f.users))
	for k, v := range f.users {
		usersBefore[k] = v
	}
	customersBefore := append([]domain.Customer(nil), f.customers...)

	if err := fn(ctx); err != nil {
		f.users = usersBefore
		f.customers = customersBefore
		return err
	}
	return nil
}

func (f *fakeUserRepo) InsertUser(_ context.Context, u domain.User) error {
	if _, ok := f.users[u.Email]; ok {
		return domain.ErrEmailTaken
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) InsertCustomer(_ context.Context, c *domain.Customer) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextCustID++
	c.ID = f.nextCustID
	f.customers = append(f.customers, *c)
	return nil
}

type fakeTokenStore struct {
	tokens map[string]string
	n      int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]string)}
}

func (f *fakeTokenStore) Issue(_ context.Context, userID string) (string, error) {
	f.n++
	token := "tok-" + userID
	f.tokens[token] = userID
	return token, nil
}

func (f *fakeTokenStore) Validate(_ context.Context, token string) (string, error) {
	userID, ok := f.tokens[token]
	if !ok {
		return "", ErrTokenInvalid
	}
	return userID, nil
}

func (f *fakeTokenStore) Revoke(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func newTestService(repo *fakeUserRepo) (*Service, *fakeTokenStore) {
	tokens := newFakeTokenStore()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewService(repo, tokens, clk), tokens
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates user and linked customer", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc, _ := newTestService(repo)

		customer, err := svc.Register(context.Background(), RegisterInput{
			Email:     "ada@example.com",
			Password:  "correct horse",
			FirstName: "Ada",
			LastName:  "Lovelace",
		})
		require.NoError(t, err)
		require.NotZero(t, customer.ID)
		require.NotNil(t, customer.UserID)

		user, err := repo.GetUserByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, *customer.UserID)
		require.NotEqual(t, "correct horse", user.PasswordHash)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc, _ := newTestService(repo)

		_, err := svc.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "short"})
		require.ErrorIs(t, err, ErrPasswordTooShort)
		require.Empty(t, repo.users)
	})

	t.Run("duplicate email rolls the whole registration back", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc, _ := newTestService(repo)

		_, err := svc.Register(context.Background(), RegisterInput{Email: "ada@example.com", Password: "correct horse", FirstName: "Ada"})
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), RegisterInput{Email: "ada@example.com", Password: "other secret", FirstName: "Imposter"})
		require.ErrorIs(t, err, domain.ErrEmailTaken)
		require.Len(t, repo.customers, 1)
	})

	t.Run("customer insert failure removes the user too", func(t *testing.T) {
		repo := newFakeUserRepo()
		repo.insertErr = errors.New("storage down")
		svc, _ := newTestService(repo)

		_, err := svc.Register(context.Background(), RegisterInput{Email: "ada@example.com", Password: "correct horse"})
		require.Error(t, err)
		require.Empty(t, repo.users)
		require.Empty(t, repo.customers)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	register := func(t *testing.T) (*Service, *fakeTokenStore) {
		t.Helper()
		repo := newFakeUserRepo()
		svc, tokens := newTestService(repo)
		_, err := svc.Register(context.Background(), RegisterInput{
			Email:    "ada@example.com",
			Password: "correct horse",
		})
		require.NoError(t, err)
		return svc, tokens
	}

	t.Run("issues a validating token", func(t *testing.T) {
		svc, tokens := register(t)

		token, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "correct horse"})
		require.NoError(t, err)

		userID, err := tokens.Validate(context.Background(), token)
		require.NoError(t, err)
		require.NotEmpty(t, userID)
	})

	t.Run("unknown email and wrong password give the same error", func(t *testing.T) {
		svc, tokens := register(t)

		_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "correct horse"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)

		_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)

		require.Equal(t, 0, tokens.n)
	})
}

func TestPasswords(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "correct horse"))
	require.False(t, CheckPassword(hash, "wrong horse"))

	_, err = HashPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)
}

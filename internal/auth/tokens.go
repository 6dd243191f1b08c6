package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrTokenInvalid = errors.New("invalid or expired token")

const tokenKeyPrefix = "auth:token:"

// TokenStore issues and validates opaque bearer tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RedisTokenStore keeps token -> user id mappings in Redis with a TTL, so
// tokens expire server-side and survive API restarts.
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

func (s *RedisTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, tokenKeyPrefix+token, userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Validate(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("look up token: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, tokenKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenKeyPrefix = "auth:refresh:"
	blacklistKeyPrefix    = "auth:blacklist:"
)

// ErrRefreshTokenNotFound is returned when a refresh token was never issued,
// has expired or was already rotated.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps refresh tokens and revoked access token ids.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error
	// ConsumeRefreshToken atomically reads and deletes the token.
	ConsumeRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
}

type redisTokenStore struct {
	rdb *redis.Client
}

var _ TokenStore = (*redisTokenStore)(nil)

func NewRedisTokenStore(rdb *redis.Client) TokenStore {
	return &redisTokenStore{rdb: rdb}
}

func (s *redisTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshTokenKeyPrefix+tokenID, userID.String(), ttl).Err()
}

func (s *redisTokenStore) ConsumeRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	raw, err := s.rdb.GetDel(ctx, refreshTokenKeyPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("refresh token payload: %w", err)
	}
	return id, nil
}

func (s *redisTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.rdb.Del(ctx, refreshTokenKeyPrefix+tokenID).Err()
}

func (s *redisTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, blacklistKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *redisTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, blacklistKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sekawan-grup/raya/internal/domain"
)

// DefaultCatalogTTL bounds how long a cached public catalog survives without a refresh.
const DefaultCatalogTTL = time.Hour

// Store handles Redis operations for the public catalog cache and revoked tokens.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// GetCatalog returns the cached public catalog. ok is false on a cache miss.
func (s *Store) GetCatalog(ctx context.Context) ([]domain.Category, bool, error) {
	data, err := s.client.Get(ctx, KeyPublicCatalog).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get catalog: %w", err)
	}

	var categories []domain.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return categories, true, nil
}

// SetCatalog caches the public catalog for ttl.
func (s *Store) SetCatalog(ctx context.Context, categories []domain.Category, ttl time.Duration) error {
	data, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	if err := s.client.Set(ctx, KeyPublicCatalog, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// InvalidateCatalog drops the cached public catalog.
func (s *Store) InvalidateCatalog(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyPublicCatalog).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog: %w", err)
	}
	return nil
}

// RevokeToken marks jti as revoked until its token would have expired anyway.
func (s *Store) RevokeToken(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, RevokedKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has been revoked.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, RevokedKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

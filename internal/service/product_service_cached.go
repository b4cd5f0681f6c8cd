package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coffee-orders/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// cachedProductService is a read-through cache decorator around a
// ProductService. The catalog surface is read-only, so entries simply expire
// by TTL. Cache failures degrade to the underlying service.
type cachedProductService struct {
	next     ProductService
	client   *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewCachedProductService wraps next with a Redis read-through cache for
// single-product reads.
func NewCachedProductService(next ProductService, client *redis.Client, logger zerolog.Logger) ProductService {
	return &cachedProductService{
		next:     next,
		client:   client,
		cacheTTL: 10 * time.Minute,
		logger:   logger.With().Str("service", "product_cache").Logger(),
	}
}

// Find bypasses the cache; listing results depend on search and sort.
func (s *cachedProductService) Find(ctx context.Context, query model.ProductQuery) ([]model.Product, error) {
	return s.next.Find(ctx, query)
}

// GetByID serves the product from Redis when present, falling back to the
// underlying service and populating the cache on the way out.
func (s *cachedProductService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	key := "product:" + id.String()

	val, err := s.client.Get(ctx, key).Result()
	if err == nil {
		var product model.Product
		if unmarshalErr := json.Unmarshal([]byte(val), &product); unmarshalErr == nil {
			return &product, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		s.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Str("key", key).Msg("product cache read failed")
	}

	product, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := s.client.Set(ctx, key, data, s.cacheTTL).Err(); setErr != nil {
			s.logger.Warn().Err(setErr).Str("key", key).Msg("product cache write failed")
		}
	}

	return product, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sonuudigital/product-catalog/internal/search"
)

const productKeyPrefix = "product:"

// ProductCache is a read-through cache in front of the search index for
// point lookups. Entries expire after the configured TTL and are dropped by
// the projection consumers when a product changes.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		ttl:    ttl,
	}
}

// GetProduct reports (doc, true, nil) on a cache hit and (zero, false, nil)
// on a miss.
func (c *ProductCache) GetProduct(ctx context.Context, id string) (search.ProductDocument, bool, error) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return search.ProductDocument{}, false, nil
		}
		return search.ProductDocument{}, false, fmt.Errorf("failed to read product %s from cache: %w", id, err)
	}

	var doc search.ProductDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return search.ProductDocument{}, false, fmt.Errorf("failed to decode cached product %s: %w", id, err)
	}

	return doc, true, nil
}

func (c *ProductCache) SetProduct(ctx context.Context, doc search.ProductDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode product %s for cache: %w", doc.ID, err)
	}

	if err := c.client.Set(ctx, productKeyPrefix+doc.ID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product %s: %w", doc.ID, err)
	}

	return nil
}

func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached product %s: %w", id, err)
	}
	return nil
}

package retriever

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"basegraph.app/correlate/internal/model"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized search results for a short time. Entries are keyed
// by a generation counter so a bump retires them without a scan.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Generation returns the counter stored at key, zero when unset.
	Generation(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) error
	// DeletePrefix removes every entry whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	return b, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Generation(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return n, nil
}

func (c *RedisCache) Bump(ctx context.Context, key string) error {
	if err := c.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache bump: %w", err)
	}
	return nil
}

func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var deleted int
	iter := c.client.Scan(ctx, 0, prefix+"*", 500).Iterator()
	batch := make([]string, 0, 500)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("cache delete: %w", err)
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("cache scan: %w", err)
	}
	return deleted, flush()
}

// searchCachePrefix scopes every cached search of one organization.
func searchCachePrefix(prefix string, orgID int64) string {
	return fmt.Sprintf("%s:search:%d:", prefix, orgID)
}

// generationKey holds the counter bumped whenever vectors of kind change.
func generationKey(prefix string, orgID int64, kind model.EntityKind) string {
	return fmt.Sprintf("%s:gen:%d:%s", prefix, orgID, kind)
}

// searchCacheKey is <prefix>:search:<org>:<kind>:<generation>:<sha256 of the
// query tuple>.
func searchCacheKey(prefix string, orgID int64, kind model.EntityKind, gen int64, query string, limit int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%s|%d|%s", orgID, kind, limit, strings.ToLower(query)))
	return fmt.Sprintf("%s%s:%d:%s", searchCachePrefix(prefix, orgID), kind, gen, hex.EncodeToString(sum[:]))
}

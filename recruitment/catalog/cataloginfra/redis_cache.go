package cataloginfra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/hojavida/pkg/logx"
	"github.com/Abraxas-365/hojavida/recruitment/catalog"
	"github.com/redis/go-redis/v9"
)

const cachePrefix = "hojavida:catalog:"

// CachedRepository is a cache-aside decorator over another catalog
// repository. Redis failures are logged and fall through to the source.
type CachedRepository struct {
	next   catalog.Repository
	client *redis.Client
	ttl    time.Duration
}

func NewCachedRepository(next catalog.Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func (r *CachedRepository) List(ctx context.Context, q catalog.Query) ([]string, error) {
	key := cacheKey(q)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var values []string
		if jsonErr := json.Unmarshal(raw, &values); jsonErr == nil {
			return values, nil
		}
		logx.Warnf("Discarding corrupt catalog cache entry %s", key)
	case err != redis.Nil:
		logx.Warnf("Catalog cache read failed for %s: %v", key, err)
	}

	values, err := r.next.List(ctx, q)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(values); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logx.Warnf("Catalog cache write failed for %s: %v", key, err)
		}
	}
	return values, nil
}

// Invalidate drops every cached catalog list
func (r *CachedRepository) Invalidate(ctx context.Context) error {
	_, err := InvalidateCache(ctx, r.client)
	return err
}

// InvalidateCache deletes the cached catalog lists held in client and
// reports how many keys were removed.
func InvalidateCache(ctx context.Context, client *redis.Client) (int, error) {
	iter := client.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func cacheKey(q catalog.Query) string {
	if q.Kind.NeedsDepartment() {
		return cachePrefix + string(q.Kind) + ":" + q.Department
	}
	return cachePrefix + string(q.Kind)
}

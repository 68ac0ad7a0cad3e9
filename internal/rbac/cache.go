package rbac

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/assetledger/backend/internal/domain"
)

const cacheKeyPrefix = "assetledger:permissions:"

// RedisCache is a go-redis-backed PermissionCache. It is advisory: a miss
// or a Redis outage degrades to the live database lookup rather than
// failing the request (§5: "the permission cache ... is advisory with DB
// fallback").
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, userID domain.ID) ([]string, bool) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+userID.String()).Bytes()
	if err != nil {
		return nil, false
	}
	var perms []string
	if err := json.Unmarshal(raw, &perms); err != nil {
		return nil, false
	}
	return perms, true
}

func (c *RedisCache) Set(ctx context.Context, userID domain.ID, perms []string) {
	raw, err := json.Marshal(perms)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKeyPrefix+userID.String(), raw, c.ttl).Err()
}

// Invalidate drops a user's cached permission set, called whenever a
// user's role or secondary roles change.
func (c *RedisCache) Invalidate(ctx context.Context, userID domain.ID) {
	_ = c.client.Del(ctx, cacheKeyPrefix+userID.String()).Err()
}

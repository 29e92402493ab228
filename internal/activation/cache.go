package activation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/google/uuid"

	"github.com/promohub/backend/pkg/redis"
)

// RedisVerdictCache stores anti-fraud verdicts in Redis, expiring each entry
// at its CacheUntil deadline.
type RedisVerdictCache struct {
	client *redis.Client
}

// NewRedisVerdictCache creates a Redis-backed verdict cache.
func NewRedisVerdictCache(client *redis.Client) *RedisVerdictCache {
	return &RedisVerdictCache{client: client}
}

type cachedVerdict struct {
	Ok         bool      `json:"ok"`
	CacheUntil time.Time `json:"cache_until"`
}

func verdictKey(promoID, userID uuid.UUID) string {
	return fmt.Sprintf("antifraud:promo:%s:user:%s", promoID, userID)
}

func (c *RedisVerdictCache) Get(ctx context.Context, promoID, userID uuid.UUID) (Verdict, bool, error) {
	raw, err := c.client.Get(ctx, verdictKey(promoID, userID)).Result()
	if err == goredis.Nil {
		return Verdict{}, false, nil
	}
	if err != nil {
		return Verdict{}, false, err
	}
	var v cachedVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Verdict{}, false, err
	}
	return Verdict{Ok: v.Ok, CacheUntil: v.CacheUntil}, true, nil
}

func (c *RedisVerdictCache) Set(ctx context.Context, promoID, userID uuid.UUID, v Verdict) error {
	ttl := time.Until(v.CacheUntil)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(cachedVerdict{Ok: v.Ok, CacheUntil: v.CacheUntil})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, verdictKey(promoID, userID), raw, ttl).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vehicle-route-service/internal/platform/obs"
	"vehicle-route-service/internal/ports"
)

const redisMatrixKeyPrefix = "matrix:"

// Redis entries expire; the SQL cache is the durable tier.
const defaultRedisMatrixTTL = 24 * time.Hour

type redisMatrixEntry struct {
	Durations [][]float64 `json:"durations"`
	Distances [][]float64 `json:"distances"`
}

// RedisMatrixCache is a Redis-backed cache for raw travel matrices keyed by
// their coordinate list.
type RedisMatrixCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisMatrixCache(client *redis.Client) *RedisMatrixCache {
	return &RedisMatrixCache{Client: client, TTL: defaultRedisMatrixTTL}
}

func (r *RedisMatrixCache) Get(ctx context.Context, key string) (_ ports.RawTravelMatrix, _ bool, err error) {
	defer obs.Time(ctx, "matrix.redis.Get")(&err)

	if r.Client == nil {
		return ports.RawTravelMatrix{}, false, errors.New("matrix cache: redis client is nil")
	}
	if key == "" {
		return ports.RawTravelMatrix{}, false, errors.New("get matrix cache: key must not be empty")
	}

	payload, err := r.Client.Get(ctx, redisMatrixKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ports.RawTravelMatrix{}, false, nil
	}
	if err != nil {
		return ports.RawTravelMatrix{}, false, fmt.Errorf("get matrix cache: redis get: %w", err)
	}

	var entry redisMatrixEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return ports.RawTravelMatrix{}, false, fmt.Errorf("get matrix cache: parse entry: %w", err)
	}

	return ports.RawTravelMatrix{Durations: entry.Durations, Distances: entry.Distances}, true, nil
}

func (r *RedisMatrixCache) Put(ctx context.Context, key string, m ports.RawTravelMatrix) (err error) {
	defer obs.Time(ctx, "matrix.redis.Put")(&err)

	if r.Client == nil {
		return errors.New("matrix cache: redis client is nil")
	}
	if key == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	payload, err := json.Marshal(redisMatrixEntry{Durations: m.Durations, Distances: m.Distances})
	if err != nil {
		return fmt.Errorf("insert matrix cache: marshal entry: %w", err)
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = defaultRedisMatrixTTL
	}

	if err := r.Client.Set(ctx, redisMatrixKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("insert matrix cache key=%q: redis set: %w", key, err)
	}

	return nil
}

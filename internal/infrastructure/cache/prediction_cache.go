package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"home_pricer/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const keyPrefix = "prediction:"

// PredictionCache keeps recently scored predictions in redis, keyed by the
// feature digest, so identical requests within the TTL replay one score.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPredictionCache(client *redis.Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns nil, nil on a miss.
func (c *PredictionCache) Get(ctx context.Context, key string) (*entity.Prediction, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis.Get: %w", err)
	}

	var prediction entity.Prediction
	if err := json.Unmarshal(raw, &prediction); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return &prediction, nil
}

func (c *PredictionCache) Set(ctx context.Context, key string, prediction entity.Prediction) error {
	raw, err := json.Marshal(prediction)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis.Set: %w", err)
	}

	return nil
}

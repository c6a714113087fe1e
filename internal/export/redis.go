package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisExporter stores the mapping as a hash, replacing whatever the key held.
type RedisExporter struct {
	client *redis.Client
	key    string
}

func NewRedisExporter(client *redis.Client, key string) (*RedisExporter, error) {
	if client == nil {
		return nil, errors.New("redis export: client is required")
	}
	if key == "" {
		return nil, errors.New("redis export: key is required")
	}
	return &RedisExporter{client: client, key: key}, nil
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (e *RedisExporter) Export(ctx context.Context, mapping map[string]string) (Result, error) {
	pipe := e.client.TxPipeline()
	pipe.Del(ctx, e.key)
	if len(mapping) > 0 {
		values := make(map[string]any, len(mapping))
		for slot, plate := range mapping {
			values[slot] = plate
		}
		pipe.HSet(ctx, e.key, values)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("write redis hash %s: %w", e.key, err)
	}

	return Result{Destinations: []string{"redis://" + e.client.Options().Addr + "/" + e.key}, Entries: len(mapping)}, nil
}

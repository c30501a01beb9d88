package store

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/daily-agent/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces the state keys
const DefaultRedisKeyPrefix = "daily-agent:state:"

// RedisPersister stores each state collection under its own Redis key
type RedisPersister struct {
	client *redis.Client
	prefix string
}

// NewRedisClient parses a redis:// URL and verifies the server is reachable
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			_ = closeErr
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRedisPersister creates a persister over an existing client
func NewRedisPersister(client *redis.Client, prefix string) *RedisPersister {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisPersister{client: client, prefix: prefix}
}

// Load implements Persister
func (p *RedisPersister) Load(ctx context.Context) (*models.State, error) {
	keys := make([]string, len(models.StateKeys))
	for i, name := range models.StateKeys {
		keys[i] = p.prefix + name
	}

	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	collections := make(map[string][]byte)
	for i, value := range values {
		s, ok := value.(string)
		if !ok {
			continue
		}
		collections[models.StateKeys[i]] = []byte(s)
	}
	return decodeState(collections)
}

// Save implements Persister. All keys are written in one MULTI/EXEC transaction.
func (p *RedisPersister) Save(ctx context.Context, state *models.State) error {
	collections, err := encodeState(state)
	if err != nil {
		return err
	}

	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for name, data := range collections {
			pipe.Set(ctx, p.prefix+name, data, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Close implements Persister
func (p *RedisPersister) Close() error {
	return p.client.Close()
}

// Ping verifies the Redis server is reachable
func (p *RedisPersister) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

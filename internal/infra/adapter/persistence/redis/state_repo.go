// Package redis stores the seen-state in a Redis hash: one field per
// composite key, the entry JSON as value.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rss-monitor/internal/domain/entity"
	"rss-monitor/internal/repository"
)

// Config configures the Redis connection.
type Config struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Key      string // hash holding the state
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// StateRepo keeps the seen-state in one Redis hash, one field per entry.
type StateRepo struct {
	client redis.Cmdable
	key    string
}

// NewStateRepo returns a repository using the hash stored at key.
func NewStateRepo(client redis.Cmdable, key string) repository.StateRepository {
	return &StateRepo{client: client, key: key}
}

// Load reads every field of the hash. A missing hash is an empty state.
func (repo *StateRepo) Load(ctx context.Context) (entity.SeenState, error) {
	fields, err := repo.client.HGetAll(ctx, repo.key).Result()
	if err != nil {
		return nil, fmt.Errorf("Load: HGETALL %s: %w", repo.key, err)
	}

	state := make(entity.SeenState, len(fields))
	for k, raw := range fields {
		var e entity.SeenEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("Load: decode field %q: %w", k, err)
		}
		state[k] = e
	}
	return state, nil
}

// Save replaces the hash inside a MULTI/EXEC transaction.
func (repo *StateRepo) Save(ctx context.Context, state entity.SeenState) error {
	values := make(map[string]any, len(state))
	for k, e := range state {
		raw, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("Save: encode field %q: %w", k, err)
		}
		values[k] = string(raw)
	}

	_, err := repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, repo.key)
		if len(values) > 0 {
			pipe.HSet(ctx, repo.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Save: MULTI %s: %w", repo.key, err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"rss-monitor/internal/config"
	filerepo "rss-monitor/internal/infra/adapter/persistence/file"
	"rss-monitor/internal/infra/adapter/persistence/objectstore"
	redisrepo "rss-monitor/internal/infra/adapter/persistence/redis"
	"rss-monitor/internal/repository"
)

// newStateRepository opens the configured seen-state backend. The returned
// close function is always non-nil.
func newStateRepository(ctx context.Context, st config.StateSettings, statePath string) (repository.StateRepository, func(), error) {
	noop := func() {}

	switch st.Backend {
	case config.BackendS3:
		client, err := objectstore.NewClient(ctx, objectstore.Config{
			Region:       st.S3Region,
			Endpoint:     st.S3Endpoint,
			UsePathStyle: st.S3PathStyle,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("s3 client: %w", err)
		}
		return objectstore.NewStateRepo(client, st.S3Bucket, st.S3Key), noop, nil

	case config.BackendRedis:
		client, err := redisrepo.NewClient(ctx, redisrepo.Config{
			Addr:     st.RedisAddr,
			Password: st.RedisPassword,
			DB:       st.RedisDB,
			Key:      st.RedisKey,
		})
		if err != nil {
			return nil, noop, err
		}
		return redisrepo.NewStateRepo(client, st.RedisKey), func() { _ = client.Close() }, nil

	default:
		return filerepo.NewStateRepo(statePath), noop, nil
	}
}

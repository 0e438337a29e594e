package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"civiclens-be/logger"
)

// ConnectRedis returns a client that answered a ping.
func ConnectRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Log.WithField("addr", addr).Info("Connected to Redis")
	return client, nil
}

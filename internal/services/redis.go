package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

const (
	locationKeyPrefix = "driver:location:"
	// LocationUpdatesChannel carries every committed sample for out-of-process consumers.
	LocationUpdatesChannel = "driver:location:updates"
)

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// LocationCache keeps the latest sample per user in Redis and publishes each one
// on LocationUpdatesChannel.
type LocationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLocationCache(client *redis.Client, ttl time.Duration) *LocationCache {
	return &LocationCache{client: client, ttl: ttl}
}

func (c *LocationCache) Name() string { return "redis" }

func (c *LocationCache) WriteLocation(ctx context.Context, sample models.LocationSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}

	_, err = c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, locationKeyPrefix+sample.UserID, data, c.ttl)
		p.Publish(ctx, LocationUpdatesChannel, data)
		return nil
	})
	return err
}

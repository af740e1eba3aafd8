package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func cachedLocation(t *testing.T, client *redis.Client, userID string) models.LocationSample {
	t.Helper()
	data, err := client.Get(context.Background(), "driver:location:"+userID).Bytes()
	require.NoError(t, err)
	var sample models.LocationSample
	require.NoError(t, json.Unmarshal(data, &sample))
	return sample
}

func TestLocationCache(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewLocationCache(client, time.Hour)
	ctx := context.Background()

	sub := client.Subscribe(ctx, LocationUpdatesChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	sample := models.LocationSample{ID: "s1", UserID: "d1", Latitude: -1.29, Longitude: 36.82, Accuracy: 12, Timestamp: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, cache.WriteLocation(ctx, sample))

	assert.Equal(t, sample, cachedLocation(t, client, "d1"))
	assert.True(t, mr.Exists("driver:location:d1"))
	assert.Equal(t, time.Hour, mr.TTL("driver:location:d1"))

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, `"userId":"d1"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no message on location channel")
	}

	assert.False(t, mr.Exists("driver:location:nobody"))
}

func TestLocationCacheAsSink(t *testing.T) {
	_, client := setupRedis(t)
	env := newTestEnv(t, time.Hour)
	cache := NewLocationCache(client, time.Minute)
	broadcaster := NewLocationBroadcaster(env.store, env.hub, env.gateway.logger, cache)

	sample, err := broadcaster.Update(context.Background(), env.driver.ID, models.LocationInput{Latitude: 1, Longitude: 2})
	require.NoError(t, err)

	assert.Equal(t, sample.ID, cachedLocation(t, client, env.driver.ID).ID)
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

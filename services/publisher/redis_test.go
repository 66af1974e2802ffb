package publisher

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish("post", []byte("{}")))
	assert.NoError(t, p.TrimStream())
	assert.NoError(t, p.Close())
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	// Test if Redis is available
	if _, err := client.Ping(ctx).Result(); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	const stream = "lsedump_test_stream"
	client.Del(ctx, stream)

	publisher := NewRedisPublisher(ctx, "localhost:6379", 0, stream, 10)
	defer publisher.Close()

	payload := []byte(`{"username":"tester"}`)
	require.NoError(t, publisher.Publish("post", payload))

	messages, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)

	encoded, ok := messages[0].Values["post"].(string)
	require.True(t, ok)
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	// Trim keeps the stream bounded
	for i := 0; i < 20; i++ {
		require.NoError(t, publisher.Publish("post", payload))
	}
	require.NoError(t, publisher.TrimStream())

	length, err := client.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, length, int64(10))

	client.Del(ctx, stream)
}

package publisher

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher, err := NewRedisPublisher(ctx, "localhost:6379", 0, "test_recipes", 1, 2)
	if err != nil {
		t.Skip("Redis is not available, skipping test")
	}
	defer publisher.Close()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   0,
	})
	defer client.Close()

	stream := publisher.StreamName(0)
	require.NoError(t, client.Del(ctx, stream).Err())

	require.NoError(t, publisher.Publish(ctx, "TrueID", []byte("test_message")))

	messages, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	// The message should be base64 encoded
	assert.Equal(t, "dGVzdF9tZXNzYWdl", messages[0].Values["TrueID"])

	for i := 0; i < 3; i++ {
		require.NoError(t, publisher.Publish(ctx, "TrueID", []byte("more")))
	}
	require.NoError(t, publisher.TrimStreams(ctx))

	length, err := client.XLen(ctx, stream).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}

	assert.NoError(t, p.Publish(context.Background(), "TrueID", []byte("x")))
	assert.NoError(t, p.TrimStreams(context.Background()))
	assert.NoError(t, p.Close())
}

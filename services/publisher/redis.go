package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"strconv"

	"sjsage522/menufinder/logger"
	crawlerrors "sjsage522/menufinder/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher spreads recipe messages over a fixed set of Redis streams
type RedisPublisher struct {
	client          *redis.Client
	streamPrefix    string
	streamCount     int
	streamMaxLength int
}

// NewRedisPublisher connects to Redis; messages go to streams named <streamPrefix>:0 .. <streamPrefix>:<streamCount-1>
func NewRedisPublisher(ctx context.Context, addr string, db int, streamPrefix string, streamCount int, streamMaxLength int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if streamCount < 1 {
		streamCount = 1
	}

	return &RedisPublisher{
		client:          client,
		streamPrefix:    streamPrefix,
		streamCount:     streamCount,
		streamMaxLength: streamMaxLength,
	}, nil
}

// StreamName returns the stream at index n
func (p *RedisPublisher) StreamName(n int) string {
	return p.streamPrefix + ":" + strconv.Itoa(n)
}

// Publish base64-encodes message and adds it to a randomly chosen stream under field key
func (p *RedisPublisher) Publish(ctx context.Context, key string, message []byte) error {
	encoded := base64.StdEncoding.EncodeToString(message)
	stream := p.StreamName(rand.Intn(p.streamCount))

	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			key: encoded,
		},
	}).Err()
	if err != nil {
		return crawlerrors.NewPublisher(key, "failed to publish to "+stream, err)
	}
	return nil
}

// TrimStreams trims every stream to the configured maximum length
func (p *RedisPublisher) TrimStreams(ctx context.Context) error {
	if p.streamMaxLength <= 0 {
		return nil
	}

	for n := 0; n < p.streamCount; n++ {
		stream := p.StreamName(n)
		if err := p.client.XTrimMaxLen(ctx, stream, int64(p.streamMaxLength)).Err(); err != nil {
			return crawlerrors.NewPublisher("", "failed to trim "+stream, err)
		}
	}

	logger.ForPublisher().Debug().
		Str("prefix", p.streamPrefix).
		Int("max_length", p.streamMaxLength).
		Msg("Trimmed recipe streams")
	return nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

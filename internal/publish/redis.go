package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"adstudio/internal/domain"
)

// DefaultChannel carries events when no channel is configured.
const DefaultChannel = "adstudio:results"

// Envelope is the message published on the Redis channel.
type Envelope struct {
	Function string              `json:"function"`
	Payload  domain.PublishEvent `json:"payload"`
}

// RedisPublisher fans events out over Redis pub/sub for consumers running
// outside Lambda. Having no subscribers is not an error.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewRedisPublisher(client redis.Cmdable, channel string) (*RedisPublisher, error) {
	if client == nil {
		return nil, errors.New("publish: redis client is required")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, target string, event domain.PublishEvent) error {
	data, err := json.Marshal(Envelope{Function: target, Payload: event})
	if err != nil {
		return fmt.Errorf("publish: encode envelope: %w: %w", domain.ErrDispatch, err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish: redis channel %s: %w: %w", p.channel, domain.ErrDispatch, err)
	}
	return nil
}

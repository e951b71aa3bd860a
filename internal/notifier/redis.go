package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
)

// DefaultChannel is the pub/sub channel the chat surface subscribes to.
const DefaultChannel = "attendance.events"

// RedisPublisher publishes recorded events as JSON to a redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedis builds a publisher on the given client. An empty channel falls
// back to DefaultChannel.
func NewRedis(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event notification: %w", err)
	}
	return nil
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dalemusser/ideahub/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

// RedisPublisher pushes notifications to Redis. Each notification is
// appended to "<prefix>:queue" for the push gateway and published on
// "<prefix>:user:<userID>" for live subscribers.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// Connect parses redisURL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisPublisher creates a publisher on client. An empty prefix means "ideahub".
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "ideahub"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// QueueKey is the list the push gateway drains.
func (p *RedisPublisher) QueueKey() string { return p.prefix + ":queue" }

// UserChannel is the pub/sub channel for one user.
func (p *RedisPublisher) UserChannel(userID string) string { return p.prefix + ":user:" + userID }

// Publish implements Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	pipe := p.client.TxPipeline()
	pipe.RPush(ctx, p.QueueKey(), payload)
	pipe.Publish(ctx, p.UserChannel(n.UserID), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

package kds

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/satouyama/pesto-sub001/utils"
)

// RedisPublisher publishes order events on Redis so every API instance can relay them
// to its own websocket clients.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisPublisher{rdb: rdb}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := p.rdb.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Relay forwards every message published on topics to the hub until ctx is done.
func (p *RedisPublisher) Relay(ctx context.Context, hub *Hub, topics ...string) {
	sub := p.rdb.Subscribe(ctx, topics...)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := hub.Publish(ctx, msg.Channel, json.RawMessage(msg.Payload)); err != nil {
				utils.ErrorLogger.WithField("channel", msg.Channel).Errorf("relay failed: %v", err)
			}
		}
	}
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

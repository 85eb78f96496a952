package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/ports"
)

const connectTimeout = 5 * time.Second

// RedisConfig captures the settings for establishing the Redis connection.
type RedisConfig struct {
	Addr string
	DB   int
}

// ConnectRedis initialises a Redis client and validates connectivity with a
// ping.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// envelope is the wire form of one event on a Redis channel.
type envelope struct {
	Name    string          `json:"event"`
	Payload json.RawMessage `json:"data"`
}

// RedisBus implements the event bus on Redis Pub/Sub, one Redis channel per
// topic. Events published by any API replica reach subscribers on all of
// them.
type RedisBus struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisBus(client *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{client: client, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, topic, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish %s: marshal payload: %w", topic, err)
	}
	wire, err := json.Marshal(envelope{Name: name, Payload: data})
	if err != nil {
		return fmt.Errorf("publish %s: marshal envelope: %w", topic, err)
	}
	if err := b.client.Publish(ctx, topic, wire).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan ports.Event
}

func (s *redisSubscription) Events() <-chan ports.Event {
	return s.ch
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (ports.Subscription, error) {
	pubsub := b.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	sub := &redisSubscription{pubsub: pubsub, ch: make(chan ports.Event, subscriberBuffer)}
	go b.pump(topic, sub)
	return sub, nil
}

// pump decodes messages from the Redis channel into the subscription until
// the pubsub is closed.
func (b *RedisBus) pump(topic string, sub *redisSubscription) {
	defer close(sub.ch)
	for msg := range sub.pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			b.log.Warn().Err(err).Str("topic", topic).Msg("dropping malformed bus message")
			continue
		}
		var payload any
		if len(env.Payload) > 0 {
			if err := json.Unmarshal(env.Payload, &payload); err != nil {
				b.log.Warn().Err(err).Str("topic", topic).Msg("dropping malformed bus payload")
				continue
			}
		}
		select {
		case sub.ch <- ports.Event{Topic: topic, Name: env.Name, Payload: payload}:
		default:
			b.log.Debug().Str("topic", topic).Str("event", env.Name).
				Msg("dropping event for slow subscriber")
		}
	}
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}

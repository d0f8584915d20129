package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher fans events out beyond this process.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisBus publishes ticket events on a Redis Pub/Sub channel.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisBus creates a bus bound to one channel.
func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	return &RedisBus{client: client, channel: channel, logger: logger}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	b.logger.Debug("event published",
		zap.String("channel", b.channel),
		zap.String("event_type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID))
	return nil
}

// Subscribe delivers events from the channel to handler until ctx is done,
// reconnecting with exponential backoff. Payload stays as raw JSON.
func (b *RedisBus) Subscribe(ctx context.Context, handler func(context.Context, Event, json.RawMessage)) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		err := b.subscribe(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warn("event subscription disconnected, reconnecting",
			zap.String("channel", b.channel),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisBus) subscribe(ctx context.Context, handler func(context.Context, Event, json.RawMessage)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("subscribed to event channel", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			event, raw, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn("dropping malformed event", zap.String("channel", b.channel), zap.Error(err))
				continue
			}
			handler(ctx, event, raw)
		}
	}
}

// DecodeEvent parses a published event, returning its payload undecoded.
func DecodeEvent(data []byte) (Event, json.RawMessage, error) {
	var envelope struct {
		Event
		Payload json.RawMessage `json:"payload,omitempty"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Event{}, nil, err
	}
	if envelope.Type == "" {
		return Event{}, nil, fmt.Errorf("event without type")
	}
	event := envelope.Event
	event.Payload = nil
	return event, envelope.Payload, nil
}

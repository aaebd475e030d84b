package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/pathflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultChannel is where change events are published unless configured otherwise.
const DefaultChannel = "pathflow:changes"

// Publisher implements ports.ChangePublisher on Redis Pub/Sub.
// With a history size it also keeps the most recent events in a list, so late
// subscribers can catch up.
type Publisher struct {
	client     *backend.Client
	channel    string
	historyKey string
	historyLen int64
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithChannel sets the Pub/Sub channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		p.channel = channel
	}
}

// WithHistory keeps the last n events under key. Zero disables the history.
func WithHistory(key string, n int64) Option {
	return func(p *Publisher) {
		p.historyKey = key
		p.historyLen = n
	}
}

// NewFromClient creates a publisher on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		channel: DefaultChannel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends every event as a JSON message, in order.
func (p *Publisher) Publish(ctx context.Context, events []domain.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	pipe := p.client.TxPipeline()
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal change event: %w", err)
		}
		pipe.Publish(ctx, p.channel, payload)
		if p.historyLen > 0 {
			pipe.RPush(ctx, p.historyKey, payload)
		}
	}
	if p.historyLen > 0 {
		pipe.LTrim(ctx, p.historyKey, -p.historyLen, -1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis error publishing change events: %w", err)
	}
	return nil
}

// Recent returns the retained history, oldest first.
func (p *Publisher) Recent(ctx context.Context) ([]domain.ChangeEvent, error) {
	if p.historyLen == 0 {
		return nil, nil
	}
	raw, err := p.client.LRange(ctx, p.historyKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error reading change history: %w", err)
	}

	events := make([]domain.ChangeEvent, 0, len(raw))
	for _, item := range raw {
		var ev domain.ChangeEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal change event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

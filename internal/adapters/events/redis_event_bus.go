package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/courtside/internal/domain/entities"
	"github.com/zatekoja/courtside/internal/domain/providers"
	redisclient "github.com/zatekoja/courtside/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 64

// RedisEventBus fans place events out over Redis Pub/Sub. One Redis
// subscription is held per channel no matter how many local listeners it has.
type RedisEventBus struct {
	client    *redisclient.Client
	logger    zerolog.Logger
	pubsubs   map[string]*redis.PubSub
	listeners map[string]map[chan *entities.PlaceEvent]struct{}
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:    client,
		logger:    log.With().Str("component", "event_bus").Logger(),
		pubsubs:   make(map[string]*redis.PubSub),
		listeners: make(map[string]map[chan *entities.PlaceEvent]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Publish publishes an event on a channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.PlaceEvent) error {
	if event == nil {
		return errors.New("event is nil")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug().
		Str("channel", channel).
		Str("event_id", event.ID).
		Str("event_type", string(event.EventType)).
		Msg("published place event")
	return nil
}

// Subscribe returns a channel of events that stays open until ctx is cancelled
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.PlaceEvent, error) {
	b.mu.Lock()
	if _, ok := b.pubsubs[channel]; !ok {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		// Receive confirms the subscription before any publish can be missed.
		if _, err := pubsub.Receive(ctx); err != nil {
			b.mu.Unlock()
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.pubsubs[channel] = pubsub
		go b.receive(channel, pubsub)
	}

	if b.listeners[channel] == nil {
		b.listeners[channel] = make(map[chan *entities.PlaceEvent]struct{})
	}
	events := make(chan *entities.PlaceEvent, subscriberBuffer)
	b.listeners[channel][events] = struct{}{}
	count := len(b.listeners[channel])
	b.mu.Unlock()

	b.logger.Debug().Str("channel", channel).Int("listeners", count).Msg("subscribed")

	go func() {
		<-ctx.Done()
		b.removeListener(channel, events)
	}()

	return events, nil
}

func (b *RedisEventBus) receive(channel string, pubsub *redis.PubSub) {
	defer b.release(channel, pubsub)

	messages := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			var event entities.PlaceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn().Err(err).Str("channel", channel).Msg("dropping undecodable event")
				continue
			}
			b.broadcast(channel, &event)
		}
	}
}

// broadcast never blocks on a slow listener; a listener whose buffer is full
// misses the event and catches up on its next pull refresh.
func (b *RedisEventBus) broadcast(channel string, event *entities.PlaceEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for listener := range b.listeners[channel] {
		select {
		case listener <- event:
		default:
			b.logger.Warn().
				Str("channel", channel).
				Str("event_id", event.ID).
				Msg("listener buffer full, event skipped")
		}
	}
}

func (b *RedisEventBus) removeListener(channel string, events chan *entities.PlaceEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners, ok := b.listeners[channel]
	if !ok {
		return
	}
	if _, ok := listeners[events]; !ok {
		return
	}

	delete(listeners, events)
	close(events)

	if len(listeners) > 0 {
		return
	}
	delete(b.listeners, channel)
	if pubsub, ok := b.pubsubs[channel]; ok {
		_ = pubsub.Close()
		delete(b.pubsubs, channel)
		b.logger.Debug().Str("channel", channel).Msg("closed subscription")
	}
}

func (b *RedisEventBus) closeChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for listener := range b.listeners[channel] {
		close(listener)
	}
	delete(b.listeners, channel)

	pubsub, ok := b.pubsubs[channel]
	if !ok {
		return nil
	}
	delete(b.pubsubs, channel)
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	return nil
}

// release tears a channel down when its receiver exits, unless a newer
// subscription has already replaced pubsub for that channel.
func (b *RedisEventBus) release(channel string, pubsub *redis.PubSub) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if current, ok := b.pubsubs[channel]; !ok || current != pubsub {
		return
	}

	for listener := range b.listeners[channel] {
		close(listener)
	}
	delete(b.listeners, channel)
	delete(b.pubsubs, channel)
	if err := pubsub.Close(); err != nil {
		b.logger.Warn().Err(err).Str("channel", channel).Msg("failed to close subscription")
	}
}

// Unsubscribe drops every local listener of a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return b.closeChannel(channel)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.pubsubs))
	for channel := range b.pubsubs {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		if err := b.closeChannel(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("errors closing event bus: %w", err)
	}

	b.logger.Info().Msg("event bus closed")
	return nil
}

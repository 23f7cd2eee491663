package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "emotions:user:"

// Channel returns the Redis channel carrying a user's events.
func Channel(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}

// RedisBroker shares events between server instances. Every instance
// publishes to Redis and one pattern subscriber per instance feeds the hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	log    *zap.SugaredLogger
}

func NewRedisBroker(client *redis.Client, hub *Hub, log *zap.SugaredLogger) *RedisBroker {
	return &RedisBroker{client: client, hub: hub, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, Channel(event.UserID), data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run listens until ctx is cancelled, reconnecting with backoff.
func (b *RedisBroker) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		if err := b.listen(ctx); err != nil {
			b.log.Warnw("redis subscriber error", "error", err, "retry_in", backoff)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}

func (b *RedisBroker) listen(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	b.log.Infow("✅ Event subscriber started", "pattern", channelPrefix+"*")

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.log.Warnw("failed to unmarshal event", "channel", msg.Channel, "error", err)
			continue
		}
		b.hub.FanOut(event)
	}
}

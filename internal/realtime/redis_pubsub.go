package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	hubChannel  = "hub:events"
	publishWait = 5 * time.Second
)

// redisPayload is the wire form of a hub message on the Redis channel.
type redisPayload struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
	UserID *uuid.UUID      `json:"user_id,omitempty"`
	At     int64           `json:"at"`
}

// RedisPubSub bridges hub messages across instances via Redis pub/sub.
type RedisPubSub struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPubSub creates the pub/sub bridge.
func NewRedisPubSub(client *redis.Client, logger *zap.Logger) *RedisPubSub {
	return &RedisPubSub{client: client, logger: logger}
}

// Publish implements Publisher.
func (r *RedisPubSub) Publish(msg Message) error {
	body, err := json.Marshal(redisPayload{
		Event:  msg.Event,
		Data:   msg.Data,
		UserID: msg.UserID,
		At:     time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishWait)
	defer cancel()
	return r.client.Publish(ctx, hubChannel, body).Err()
}

// Subscribe implements Subscriber. Returns a cancel function to stop the
// subscription.
func (r *RedisPubSub) Subscribe(handler func(msg Message)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := r.client.Subscribe(ctx, hubChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("subscribe %s: %w", hubChannel, err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var p redisPayload
				if err := json.Unmarshal([]byte(msg.Payload), &p); err != nil {
					continue
				}
				handler(Message{Event: p.Event, Data: p.Data, UserID: p.UserID})
			}
		}
	}()
	return func() { cancelCtx() }, nil
}

package realtimesvc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/fitsenior/backend/core"
)

// envelope keeps the payload as raw JSON so it is forwarded to clients untouched.
type envelope struct {
	Type       string          `json:"type"`
	Recipients []string        `json:"recipients"`
	Payload    json.RawMessage `json:"payload"`
}

func encodeEvent(evt core.Event) ([]byte, error) {
	return json.Marshal(evt)
}

func decodeEvent(data []byte) (core.Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return core.Event{}, err
	}
	if env.Type == "" {
		return core.Event{}, errors.New("missing event type")
	}
	return core.Event{Type: env.Type, Recipients: env.Recipients, Payload: env.Payload}, nil
}

// RedisBridge fans events out to every API instance through a Redis channel.
// Each instance subscribes and hands the events to its local Hub.
type RedisBridge struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  core.Logger
}

var _ core.EventPublisher = (*RedisBridge)(nil)

func NewRedisClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, logger core.Logger) *RedisBridge {
	return &RedisBridge{client: client, channel: channel, hub: hub, logger: logger}
}

func (b *RedisBridge) Publish(ctx context.Context, evt core.Event) error {
	if len(evt.Recipients) == 0 {
		return nil
	}
	data, err := encodeEvent(evt)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	return errors.Wrap(b.client.Publish(ctx, b.channel, data).Err(), "publishing event")
}

// Run forwards the events received on the channel to the hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribing to "+b.channel)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			evt, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn(fmt.Sprintf("realtime: dropping malformed event: %v", err), err)
				continue
			}
			if err := b.hub.Publish(ctx, evt); err != nil {
				return nil
			}
		}
	}
}

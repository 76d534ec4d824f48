package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/helio-health/patient-sync/internal/appointment"
)

// RedisStore keeps the shared document under one key and uses a pub/sub
// channel as the cross-context change signal. Subscribers other than the
// writer get the hint; everyone re-reads the key rather than trusting the
// message payload.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Key() string { return r.key }

func (r *RedisStore) channel() string { return r.key + ":changed" }

func (r *RedisStore) Load(ctx context.Context) ([]appointment.Record, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return appointment.DecodeDocument(data), nil
}

// Save replaces the document and publishes the change hint. Writer tools
// only; the sync agent never calls this.
func (r *RedisStore) Save(ctx context.Context, records []appointment.Record) error {
	data, err := appointment.EncodeDocument(records)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel(), r.key).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (r *RedisStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := r.client.Subscribe(ctx, r.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.channel(), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
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
				// Messages name the changed key; ignore anything else
				// sharing the channel.
				if msg.Payload != r.key {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

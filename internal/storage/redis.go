package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// eventsChannel carries the name of each changed key over pub/sub.
const eventsChannel = "client_storage:events"

// Redis is the shared durable backend. Every write publishes the key
// name on a pub/sub channel, so subscribers in other instances get a
// cross-instance change signal. The publisher hears its own writes
// too; subscribers only re-read, so that is harmless.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (s *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return err
	}
	return s.rdb.Publish(ctx, eventsChannel, key).Err()
}

func (s *Redis) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return err
	}
	return s.rdb.Publish(ctx, eventsChannel, key).Err()
}

func (s *Redis) Subscribe(key string, fn func()) (func(), error) {
	ps := s.rdb.Subscribe(context.Background(), eventsChannel)
	if _, err := ps.Receive(context.Background()); err != nil {
		_ = ps.Close()
		return nil, err
	}

	go func() {
		for msg := range ps.Channel() {
			if msg.Payload == key {
				fn()
			}
		}
	}()

	return func() { _ = ps.Close() }, nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

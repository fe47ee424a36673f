package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const slotKeyPrefix = "slot:"

type redisSlot struct {
	client *redis.Client
	key    string
}

// NewRedisSlot stores the document under a single Redis key.
func NewRedisSlot(client *redis.Client, name string) Slot {
	return &redisSlot{client: client, key: slotKeyPrefix + name}
}

func (r *redisSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadSlot, err)
	}
	if len(data) == 0 {
		return nil, ErrSlotEmpty
	}
	return data, nil
}

func (r *redisSlot) Save(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedSaveSlot, err)
	}
	return nil
}

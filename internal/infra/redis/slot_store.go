package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// SlotStore keeps each slot as a plain string key: SET archive:{slot} <json>.
// Slots never expire; they are removed only by Delete.
type SlotStore struct {
	client *redis.Client
	prefix string
}

func NewSlotStore(client *redis.Client) *SlotStore {
	return &SlotStore{client: client, prefix: "archive:"}
}

func (s *SlotStore) Read(ctx context.Context, slot string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *SlotStore) Write(ctx context.Context, slot string, data []byte) error {
	return s.client.Set(ctx, s.key(slot), data, 0).Err()
}

func (s *SlotStore) Delete(ctx context.Context, slot string) error {
	return s.client.Del(ctx, s.key(slot)).Err()
}

func (s *SlotStore) key(slot string) string {
	return s.prefix + slot
}

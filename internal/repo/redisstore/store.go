// Package redisstore keeps hook values in Redis, one hash per account with
// a field per hook key.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fnrelay:hooks:"

type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Key returns the Redis hash holding every hook of one account. The hook key
// is a field of the hash, never part of the Redis key, so account ids and
// hook keys containing ':' cannot collide.
func Key(accountID string) string {
	return keyPrefix + accountID
}

func (s *Store) Get(ctx context.Context, key, accountID string) (json.RawMessage, bool, error) {
	raw, err := s.rdb.HGet(ctx, Key(accountID), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get hook %q: %w", key, err)
	}
	return json.RawMessage(raw), true, nil
}

func (s *Store) Set(ctx context.Context, key, accountID string, value json.RawMessage) error {
	if err := s.rdb.HSet(ctx, Key(accountID), key, []byte(value)).Err(); err != nil {
		return fmt.Errorf("redis set hook %q: %w", key, err)
	}
	return nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

// RedisCartStore holds each session's cart as a JSON blob. Carts expire after
// the TTL; an expired or never-written session reads back as an empty cart.
type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func cartKey(sessionID string) string { return "cart:" + sessionID }

func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (*entity.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &entity.Cart{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart %s: %w", sessionID, err)
	}

	var cart entity.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

func (s *RedisCartStore) Put(ctx context.Context, cart *entity.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.SessionID, err)
	}
	return s.rdb.Set(ctx, cartKey(cart.SessionID), raw, s.ttl).Err()
}

func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}

var _ usecase.CartStore = (*RedisCartStore)(nil)

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alterd/checkout/internal/redisx"
	"github.com/redis/go-redis/v9"
)

// ErrContention is returned when a session cart keeps changing under a
// mutation and the optimistic retries run out.
var ErrContention = errors.New("cart modified concurrently, retry")

type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

const maxTxRetries = 5

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load returns an empty cart for sessions that have none yet.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	return decode(s.client.Get(ctx, redisx.CartKey(sessionID)), sessionID)
}

// Update runs fn against the current cart inside a WATCH/MULTI transaction on
// the session key, so mutations for one session are applied one at a time.
// An error from fn aborts without writing.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (*Cart, error) {
	key := redisx.CartKey(sessionID)
	var out *Cart

	txf := func(tx *redis.Tx) error {
		c, err := decode(tx.Get(ctx, key), sessionID)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		c.UpdatedAt = time.Now().UTC()
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal cart failed: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, s.ttl)
			return nil
		})
		if err == nil {
			out = c
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrContention
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisx.CartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func decode(cmd *redis.StringCmd, sessionID string) (*Cart, error) {
	data, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return New(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	c.SessionID = sessionID
	return &c, nil
}

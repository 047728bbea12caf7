package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
)

const maxTxAttempts = 10

var ErrConflict = errors.New("cart changed concurrently, try again")

// Store keeps one cart per session in Redis.
type Store struct {
	Redis *redis.Client
	TTL   time.Duration
}

func key(sessionID string) string { return fmt.Sprintf(redisx.KeyCart, sessionID) }

func (s *Store) Get(ctx context.Context, sessionID string) (Cart, error) {
	b, err := s.Redis.Get(ctx, key(sessionID)).Bytes()
	return decode(b, err)
}

// Update applies fn to the session's cart under WATCH, so two requests of
// the same session never overwrite each other's change. If fn fails nothing
// is written.
func (s *Store) Update(ctx context.Context, sessionID string, fn func(*Cart) error) (Cart, error) {
	k := key(sessionID)

	var out Cart
	txf := func(tx *redis.Tx) error {
		c, err := decode(tx.Get(ctx, k).Bytes())
		if err != nil {
			return err
		}

		if err := fn(&c); err != nil {
			return err
		}

		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("json.Marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if c.Empty() {
				pipe.Del(ctx, k)
				return nil
			}
			pipe.Set(ctx, k, b, s.ttl())
			return nil
		})
		if err != nil {
			return err
		}

		out = c
		return nil
	}

	for range maxTxAttempts {
		err := s.Redis.Watch(ctx, txf, k)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return Cart{}, err
	}

	return Cart{}, ErrConflict
}

func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.Redis.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return redisx.TTLCart
	}
	return s.TTL
}

func decode(b []byte, err error) (Cart, error) {
	if errors.Is(err, redis.Nil) {
		return Cart{}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return Cart{}, fmt.Errorf("json.Unmarshal cart: %w", err)
	}
	return c, nil
}

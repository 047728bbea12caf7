package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/ariefcatur/go-juice-pos/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Session struct {
	UserID  uuid.UUID
	Role    profiles.Role
	LoginAt time.Time
}

type SessionStore interface {
	Create(ctx context.Context, sid string, s Session, ttl time.Duration) error
	Get(ctx context.Context, sid string) (Session, bool, error)
	Delete(ctx context.Context, sid string) error
}

// RedisSessions keeps each session as a hash that expires with the token.
type RedisSessions struct{ Redis *redis.Client }

func sessionKey(sid string) string { return fmt.Sprintf(redisx.KeySession, sid) }

func (r *RedisSessions) Create(ctx context.Context, sid string, s Session, ttl time.Duration) error {
	k := sessionKey(sid)
	_, err := r.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k,
			"user_id", s.UserID.String(),
			"role", string(s.Role),
			"login_at", s.LoginAt.UTC().Format(time.RFC3339),
		)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *RedisSessions) Get(ctx context.Context, sid string) (Session, bool, error) {
	m, err := r.Redis.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return Session{}, false, fmt.Errorf("get session: %w", err)
	}
	if len(m) == 0 {
		return Session{}, false, nil
	}

	uid, err := uuid.Parse(m["user_id"])
	if err != nil {
		return Session{}, false, fmt.Errorf("session user_id: %w", err)
	}
	loginAt, _ := time.Parse(time.RFC3339, m["login_at"])

	return Session{UserID: uid, Role: profiles.Role(m["role"]), LoginAt: loginAt}, true, nil
}

func (r *RedisSessions) Delete(ctx context.Context, sid string) error {
	if err := r.Redis.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

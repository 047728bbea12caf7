// Package auth signs users in and guards routes by role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("wrong username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
)

const DefaultSessionTTL = 12 * time.Hour

type Users interface {
	GetByUsername(ctx context.Context, username string) (profiles.Profile, error)
}

type Claims struct {
	UserID    string        `json:"uid"`
	Role      profiles.Role `json:"role"`
	SessionID string        `json:"sid"`
	jwt.RegisteredClaims
}

// Principal is the signed-in caller of a request.
type Principal struct {
	UserID    uuid.UUID
	Role      profiles.Role
	SessionID string
}

type Service struct {
	Users    Users
	Sessions SessionStore
	Secret   []byte
	TTL      time.Duration
	Issuer   string

	Now func() time.Time
}

// Login checks the password and opens a session. The returned token is only
// valid while the session exists.
func (s *Service) Login(ctx context.Context, username, password string) (string, profiles.Profile, error) {
	p, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return "", profiles.Profile{}, ErrInvalidCredentials
		}
		return "", profiles.Profile{}, err
	}

	if err := p.CheckPassword(password); err != nil {
		if errors.Is(err, profiles.ErrWrongPassword) {
			return "", profiles.Profile{}, ErrInvalidCredentials
		}
		return "", profiles.Profile{}, err
	}

	now := s.now()
	sid := uuid.NewString()

	if err := s.Sessions.Create(ctx, sid, Session{UserID: p.ID, Role: p.Role, LoginAt: now}, s.ttl()); err != nil {
		return "", profiles.Profile{}, err
	}

	token, err := s.sign(p, sid, now)
	if err != nil {
		_ = s.Sessions.Delete(ctx, sid)
		return "", profiles.Profile{}, err
	}

	return token, p, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.Sessions.Delete(ctx, sessionID)
}

// Authenticate verifies token and that its session is still open.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: bad uid", ErrUnauthorized)
	}

	sess, ok, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return Principal{}, err
	}
	if !ok || sess.UserID != uid {
		return Principal{}, fmt.Errorf("%w: session ended", ErrUnauthorized)
	}

	return Principal{UserID: uid, Role: sess.Role, SessionID: claims.SessionID}, nil
}

func (s *Service) sign(p profiles.Profile, sid string, now time.Time) (string, error) {
	claims := Claims{
		UserID:    p.ID.String(),
		Role:      p.Role,
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Username,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("jwt.SignedString: %w", err)
	}
	return signed, nil
}

func (s *Service) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

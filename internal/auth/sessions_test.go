package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/auth"
	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/ariefcatur/go-juice-pos/internal/redisx/redistest"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type redisSessionsSuite struct {
	suite.Suite

	rdb       *redis.Client
	sessions  *auth.RedisSessions
	container testcontainers.Container
}

func TestRedisSessionsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(redisSessionsSuite))
}

func (s *redisSessionsSuite) SetupSuite() {
	var err error
	s.container, s.rdb, err = redistest.Start(s.T().Context())
	s.Require().NoError(err)
	s.sessions = &auth.RedisSessions{Redis: s.rdb}
}

func (s *redisSessionsSuite) TearDownSuite() {
	if s.rdb != nil {
		s.NoError(s.rdb.Close())
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(context.Background()))
	}
}

func (s *redisSessionsSuite) TestLifecycle() {
	ctx := s.T().Context()
	sid := uuid.NewString()
	want := auth.Session{UserID: uuid.New(), Role: profiles.RoleOwner, LoginAt: time.Now().UTC().Truncate(time.Second)}

	s.Require().NoError(s.sessions.Create(ctx, sid, want, time.Minute))

	got, ok, err := s.sessions.Get(ctx, sid)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(want.UserID, got.UserID)
	s.Equal(want.Role, got.Role)
	s.True(want.LoginAt.Equal(got.LoginAt))

	ttl, err := s.rdb.TTL(ctx, "session:"+sid).Result()
	s.Require().NoError(err)
	s.Positive(ttl)

	s.Require().NoError(s.sessions.Delete(ctx, sid))
	_, ok, err = s.sessions.Get(ctx, sid)
	s.Require().NoError(err)
	s.False(ok)
}

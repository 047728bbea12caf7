package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariefcatur/go-juice-pos/internal/cart"
	"github.com/ariefcatur/go-juice-pos/internal/redisx/redistest"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type storeSuite struct {
	suite.Suite

	rdb       *redis.Client
	store     *cart.Store
	container testcontainers.Container
}

func TestStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(storeSuite))
}

func (s *storeSuite) SetupSuite() {
	var err error
	s.container, s.rdb, err = redistest.Start(s.T().Context())
	s.Require().NoError(err)

	s.store = &cart.Store{Redis: s.rdb}
}

func (s *storeSuite) TearDownSuite() {
	if s.rdb != nil {
		s.NoError(s.rdb.Close())
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(context.Background()))
	}
}

func (s *storeSuite) TestGetMissing() {
	c, err := s.store.Get(s.T().Context(), uuid.NewString())
	s.Require().NoError(err)
	s.True(c.Empty())
}

func (s *storeSuite) TestUpdateAndClear() {
	ctx := s.T().Context()
	sid := uuid.NewString()
	mango := product("Mango", "45")

	c, err := s.store.Update(ctx, sid, func(c *cart.Cart) error { return c.Add(mango, 2) })
	s.Require().NoError(err)
	s.Equal(2, c.Count())

	got, err := s.store.Get(ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(got.Items, 1)
	s.Equal(mango.ProductID, got.Items[0].ProductID)
	s.True(mango.Price.Equal(got.Items[0].Price))

	ttl, err := s.rdb.TTL(ctx, "cart:"+sid).Result()
	s.Require().NoError(err)
	s.Positive(ttl)

	s.Require().NoError(s.store.Clear(ctx, sid))
	got, err = s.store.Get(ctx, sid)
	s.Require().NoError(err)
	s.True(got.Empty())
}

func (s *storeSuite) TestFailedMutationWritesNothing() {
	ctx := s.T().Context()
	sid := uuid.NewString()
	mango := product("Mango", "45")

	_, err := s.store.Update(ctx, sid, func(c *cart.Cart) error { return c.Add(mango, 1) })
	s.Require().NoError(err)

	boom := errors.New("boom")
	_, err = s.store.Update(ctx, sid, func(c *cart.Cart) error {
		c.Clear()
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.Get(ctx, sid)
	s.Require().NoError(err)
	s.Equal(1, got.Count())
}

func (s *storeSuite) TestEmptiedCartIsDeleted() {
	ctx := s.T().Context()
	sid := uuid.NewString()
	mango := product("Mango", "45")

	_, err := s.store.Update(ctx, sid, func(c *cart.Cart) error { return c.Add(mango, 1) })
	s.Require().NoError(err)

	_, err = s.store.Update(ctx, sid, func(c *cart.Cart) error { return c.UpdateQty(mango.ProductID, -1) })
	s.Require().NoError(err)

	n, err := s.rdb.Exists(ctx, "cart:"+sid).Result()
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *storeSuite) TestConcurrentAddsAreNotLost() {
	const n = 8

	ctx := s.T().Context()
	sid := uuid.NewString()
	mango := product("Mango", "45")

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Update(ctx, sid, func(c *cart.Cart) error { return c.Add(mango, 1) })
			s.NoError(err)
		}()
	}
	wg.Wait()

	got, err := s.store.Get(ctx, sid)
	s.Require().NoError(err)
	s.Equal(n, got.Count())
}

package orders_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/postgres/pgtest"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

type orderRepoSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      *orders.Repo
	container testcontainers.Container
}

func TestOrderRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(orderRepoSuite))
}

func (s *orderRepoSuite) SetupSuite() {
	var err error
	s.container, s.pool, err = pgtest.Start(s.T().Context())
	s.Require().NoError(err)

	s.repo = &orders.Repo{DB: s.pool}
}

func (s *orderRepoSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(s.T().Context()))
	}
}

func (s *orderRepoSuite) SetupTest() {
	s.Require().NoError(pgtest.Truncate(s.T().Context(), s.pool, "orders"))
}

func (s *orderRepoSuite) newOrder(status orders.Status) orders.NewOrder {
	return orders.NewOrder{
		Items:         []orders.LineItem{juice("Mango", "45.50", 2), juice("Lime", "30", 1)},
		PaymentMethod: orders.PaymentCash,
		Status:        status,
	}
}

func (s *orderRepoSuite) insert(id string, status orders.Status) orders.Order {
	n := s.newOrder(status)
	o, err := s.repo.InsertOrder(s.T().Context(), id, n, orders.THB(orders.TotalOf(n.Items)))
	s.Require().NoError(err)
	return o
}

func (s *orderRepoSuite) TestInsertAndGet() {
	ctx := s.T().Context()

	inserted := s.insert("161026-001", orders.StatusPending)
	s.Equal("161026-001", inserted.ID)
	s.True(decimal.RequireFromString("121").Equal(inserted.Total.Amount))
	s.Equal("THB", inserted.Total.Currency.String())
	s.False(inserted.CreatedAt.IsZero())

	got, err := s.repo.GetOrder(ctx, "161026-001")
	s.Require().NoError(err)
	s.Equal(inserted.ID, got.ID)
	s.Equal(orders.StatusPending, got.Status)
	s.Require().Len(got.Items, 2)
	s.Equal("Mango", got.Items[0].Name)
	s.True(decimal.RequireFromString("45.5").Equal(got.Items[0].Price))
	s.Nil(got.CustomerID)

	_, err = s.repo.GetOrder(ctx, "161026-999")
	s.ErrorIs(err, orders.ErrNotFound)
}

func (s *orderRepoSuite) TestInsertDuplicateID() {
	s.insert("161026-001", orders.StatusPending)

	n := s.newOrder(orders.StatusPending)
	_, err := s.repo.InsertOrder(s.T().Context(), "161026-001", n, orders.THB(orders.TotalOf(n.Items)))
	s.ErrorIs(err, orders.ErrIDCollision)
}

func (s *orderRepoSuite) TestLatestIDSince() {
	ctx := s.T().Context()
	startOfDay := time.Now().Add(-time.Hour)

	_, found, err := s.repo.LatestIDSince(ctx, startOfDay, "161026-")
	s.Require().NoError(err)
	s.False(found)

	for _, id := range []string{"161026-002", "161026-010", "161026-009", "151026-500"} {
		s.insert(id, orders.StatusCompleted)
	}

	latest, found, err := s.repo.LatestIDSince(ctx, startOfDay, "161026-")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("161026-010", latest)

	s.insert("161026-1000", orders.StatusCompleted)
	latest, _, err = s.repo.LatestIDSince(ctx, startOfDay, "161026-")
	s.Require().NoError(err)
	s.Equal("161026-1000", latest)

	_, found, err = s.repo.LatestIDSince(ctx, time.Now().Add(time.Hour), "161026-")
	s.Require().NoError(err)
	s.False(found)
}

func (s *orderRepoSuite) TestListOrders() {
	ctx := s.T().Context()

	s.insert("161026-001", orders.StatusPending)
	s.insert("161026-002", orders.StatusCompleted)
	s.insert("161026-003", orders.StatusCancelled)

	tests := []struct {
		name    string
		filter  orders.Filter
		wantIDs []string
	}{
		{name: "all newest first", wantIDs: []string{"161026-003", "161026-002", "161026-001"}},
		{
			name:    "by status",
			filter:  orders.Filter{Statuses: []orders.Status{orders.StatusPending, orders.StatusCompleted}},
			wantIDs: []string{"161026-002", "161026-001"},
		},
		{name: "limit", filter: orders.Filter{Limit: 1}, wantIDs: []string{"161026-003"}},
		{
			name:    "until excludes everything",
			filter:  orders.Filter{Until: lo.ToPtr(time.Now().Add(-time.Hour))},
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.repo.ListOrders(ctx, tt.filter)
			s.Require().NoError(err)
			s.Equal(tt.wantIDs, lo.Map(got, func(o orders.Order, _ int) string { return o.ID }))
		})
	}
}

func (s *orderRepoSuite) TestUpdateStatus() {
	ctx := s.T().Context()
	s.insert("161026-001", orders.StatusPending)

	o, from, err := s.repo.UpdateStatus(ctx, "161026-001", orders.StatusCompleted)
	s.Require().NoError(err)
	s.Equal(orders.StatusPending, from)
	s.Equal(orders.StatusCompleted, o.Status)

	_, _, err = s.repo.UpdateStatus(ctx, "161026-001", orders.StatusPending)
	s.ErrorIs(err, orders.ErrInvalidTransition)

	_, _, err = s.repo.UpdateStatus(ctx, "161026-404", orders.StatusCompleted)
	s.ErrorIs(err, orders.ErrNotFound)
}

func (s *orderRepoSuite) TestConcurrentPlacement() {
	const n = 20

	svc := &orders.Service{
		Store:      s.repo,
		Location:   time.Local,
		MaxRetries: 2 * n,
		BackOff:    func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []string
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := svc.PlaceOrder(s.T().Context(), s.newOrder(""))
			s.NoError(err)

			mu.Lock()
			ids = append(ids, o.ID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(lo.Uniq(ids), n)
	prefix := orders.DatePart(time.Now()) + "-"
	for _, id := range ids {
		s.Contains(id, prefix)
	}
}

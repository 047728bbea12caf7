package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/kafka"
	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	DefaultMaxRetries   = 5
	DefaultStoreTimeout = 5 * time.Second
)

type Store interface {
	LatestIDFinder
	InsertOrder(ctx context.Context, id string, n NewOrder, total Money) (Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	UpdateStatus(ctx context.Context, id string, to Status) (Order, Status, error)
}

type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// Service places orders and moves them through their lifecycle.
//
// Placement serializes nothing in-process. Uniqueness comes from the primary
// key on orders.id: a collision re-runs allocation and insert, bounded by
// MaxRetries, with exponential backoff between attempts. Transient store
// failures are retried the same way; anything else ends placement at once.
type Service struct {
	Store        Store
	Events       Publisher // optional
	Location     *time.Location
	MaxRetries   uint64
	StoreTimeout time.Duration
	ServiceName  string
	Logger       *slog.Logger

	Now     func() time.Time
	BackOff func() backoff.BackOff
}

func (s *Service) PlaceOrder(ctx context.Context, n NewOrder) (Order, error) {
	if err := n.Validate(); err != nil {
		return Order{}, err
	}
	if n.Status == "" {
		n.Status = StatusPending
	}

	total := THB(TotalOf(n.Items))
	alloc := IDAllocator{Finder: s.Store, Location: s.Location}

	attempt := func() (Order, error) {
		actx, cancel := context.WithTimeout(ctx, s.storeTimeout())
		defer cancel()

		id, err := alloc.Allocate(actx, s.now())
		if err != nil {
			if retryableRead(ctx, err) {
				return Order{}, err
			}
			return Order{}, backoff.Permanent(err)
		}

		o, err := s.Store.InsertOrder(actx, id, n, total)
		if err != nil && !retryableInsert(err) {
			return Order{}, backoff.Permanent(err)
		}
		return o, err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.backOff(), s.maxRetries()), ctx)

	o, err := backoff.RetryNotifyWithData(attempt, b, func(err error, wait time.Duration) {
		s.logger().WarnContext(ctx, "order placement retry", "error", err, "wait", wait)
	})
	if err != nil {
		return Order{}, fmt.Errorf("place order: %w", err)
	}

	s.logger().InfoContext(ctx, "order placed", "order_id", o.ID, "total", o.Total.Amount.StringFixed(2),
		"payment_method", o.PaymentMethod, "status", o.Status)

	if ev, err := NewOrderCreatedEvent(o, s.ServiceName, traceID(ctx)); err != nil {
		s.logger().ErrorContext(ctx, "build order event", "order_id", o.ID, "error", err)
	} else {
		s.publish(TopicOrderCreated, ev)
	}

	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()

	return s.Store.GetOrder(ctx, id)
}

// ChangeStatus is the only mutation an order accepts after placement.
func (s *Service) ChangeStatus(ctx context.Context, id string, to Status) (Order, error) {
	if _, err := ToStatus(string(to)); err != nil {
		return Order{}, fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	}

	sctx, cancel := context.WithTimeout(ctx, s.storeTimeout())
	defer cancel()

	o, from, err := s.Store.UpdateStatus(sctx, id, to)
	if err != nil {
		return Order{}, fmt.Errorf("change status: %w", err)
	}

	s.logger().InfoContext(ctx, "order status changed", "order_id", o.ID, "from", from, "to", o.Status)

	if ev, err := NewOrderStatusChangedEvent(o, from, s.ServiceName, traceID(ctx)); err != nil {
		s.logger().ErrorContext(ctx, "build order event", "order_id", o.ID, "error", err)
	} else {
		s.publish(TopicOrderStatusChanged, ev)
	}

	return o, nil
}

func (s *Service) publish(topic string, ev Envelope) {
	if s.Events == nil {
		return
	}

	s.Events.Publish(topic, PartitionKey(ev.CorrelationID), kafka.MustMarshal(ev),
		kafkago.Header{Key: HeaderEventType, Value: []byte(ev.EventType)},
		kafkago.Header{Key: HeaderEventVersion, Value: []byte("1")},
	)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) maxRetries() uint64 {
	if s.MaxRetries == 0 {
		return DefaultMaxRetries
	}
	return s.MaxRetries
}

func (s *Service) storeTimeout() time.Duration {
	if s.StoreTimeout <= 0 {
		return DefaultStoreTimeout
	}
	return s.StoreTimeout
}

func (s *Service) backOff() backoff.BackOff {
	if s.BackOff != nil {
		return s.BackOff()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 25 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0 // bounded by MaxRetries
	return b
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

type traceKey struct{}

// WithTraceID tags ctx so published events carry the originating request id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func traceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

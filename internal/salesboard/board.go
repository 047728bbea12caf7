// Package salesboard keeps today's running sales figures in Redis, built
// from the order event stream.
package salesboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/kafka"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	topProducts   = 5
	maxTxAttempts = 5
)

type Board struct {
	Redis       *redis.Client
	Location    *time.Location
	ServiceName string
	Log         *slog.Logger
}

type ProductCount struct {
	Name string `json:"name"`
	Qty  int64  `json:"qty"`
}

type Snapshot struct {
	Day         string          `json:"day"`
	Orders      int64           `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
	Items       int64           `json:"items"`
	Pending     int64           `json:"pending"`
	Cancelled   int64           `json:"cancelled"`
	TopProducts []ProductCount  `json:"top_products"`
}

// HandleMessage applies one order event to the counters of the day the order
// was placed. Each event id is applied once.
func (b *Board) HandleMessage(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := kafka.UnmarshalEnvelope(m.Value, &env); err != nil {
		b.log().Warn("skip message", "topic", m.Topic, "offset", m.Offset, "error", err)
		return nil
	}

	c, ok, err := changeFor(env, b.Location)
	if err != nil {
		b.log().Warn("skip event", "event_id", env.EventID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	dedupKey := fmt.Sprintf(redisx.KeyDedup, b.service(), env.EventID)
	applied, err := b.apply(ctx, dedupKey, c)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	b.log().Debug("sales updated", "event_id", env.EventID, "order_id", env.CorrelationID, "day", c.day)
	return nil
}

// apply adds c to the day's counters and records dedupKey in the same
// MULTI, so an event is either fully counted and marked or not at all.
func (b *Board) apply(ctx context.Context, dedupKey string, c change) (bool, error) {
	dayKey := fmt.Sprintf(redisx.KeySalesDay, c.day)
	productsKey := fmt.Sprintf(redisx.KeySalesProducts, c.day)

	var applied bool
	txf := func(tx *redis.Tx) error {
		applied = false

		seen, err := redisx.Exists(ctx, tx, dedupKey)
		if err != nil || seen {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			redisx.Mark(ctx, pipe, dedupKey, redisx.TTLDedup)
			for field, n := range map[string]int64{
				"orders":         c.orders,
				"revenue_satang": c.satang,
				"items":          c.items,
				"pending":        c.pending,
				"cancelled":      c.cancelled,
			} {
				if n != 0 {
					pipe.HIncrBy(ctx, dayKey, field, n)
				}
			}
			for name, qty := range c.products {
				pipe.ZIncrBy(ctx, productsKey, float64(qty), name)
			}
			pipe.Expire(ctx, dayKey, redisx.TTLSales)
			pipe.Expire(ctx, productsKey, redisx.TTLSales)
			return nil
		})
		if err == nil {
			applied = true
		}
		return err
	}

	for range maxTxAttempts {
		err := b.Redis.Watch(ctx, txf, dedupKey)
		if err == nil {
			return applied, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, fmt.Errorf("apply sales %s: %w", c.day, err)
	}
	return false, fmt.Errorf("apply sales %s: %w", c.day, redis.TxFailedErr)
}

// Snapshot reads the figures for the shop-local day containing day.
func (b *Board) Snapshot(ctx context.Context, day time.Time) (Snapshot, error) {
	if b.Location != nil {
		day = day.In(b.Location)
	}
	d := orders.DatePart(day)

	fields, err := b.Redis.HGetAll(ctx, fmt.Sprintf(redisx.KeySalesDay, d)).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read sales %s: %w", d, err)
	}

	top, err := b.Redis.ZRevRangeWithScores(ctx, fmt.Sprintf(redisx.KeySalesProducts, d), 0, topProducts-1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Snapshot{}, fmt.Errorf("read top products %s: %w", d, err)
	}

	s := Snapshot{
		Day:         d,
		Orders:      intField(fields, "orders"),
		Revenue:     decimal.New(intField(fields, "revenue_satang"), -2),
		Items:       intField(fields, "items"),
		Pending:     intField(fields, "pending"),
		Cancelled:   intField(fields, "cancelled"),
		TopProducts: []ProductCount{},
	}
	for _, z := range top {
		if z.Score <= 0 {
			continue
		}
		s.TopProducts = append(s.TopProducts, ProductCount{Name: fmt.Sprint(z.Member), Qty: int64(z.Score)})
	}
	return s, nil
}

func (b *Board) service() string {
	if b.ServiceName == "" {
		return "salesboard"
	}
	return b.ServiceName
}

func (b *Board) log() *slog.Logger {
	if b.Log != nil {
		return b.Log
	}
	return slog.Default()
}

func intField(m map[string]string, k string) int64 {
	n, _ := strconv.ParseInt(m[k], 10, 64)
	return n
}

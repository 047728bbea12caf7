package salesboard

import (
	"fmt"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/kafka"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/shopspring/decimal"
)

// change is what one event does to a day's counters. Only completed orders
// count as sales.
type change struct {
	day       string
	orders    int64
	satang    int64
	items     int64
	pending   int64
	cancelled int64
	products  map[string]int64
}

func changeFor(env orders.Envelope, loc *time.Location) (change, bool, error) {
	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafka.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return change{}, false, err
		}

		c := change{day: day(p.CreatedAt, loc)}
		switch orders.Status(p.Status) {
		case orders.StatusCompleted:
			if err := c.sale(1, p.Total, p.Items); err != nil {
				return change{}, false, err
			}
		case orders.StatusPending:
			c.pending = 1
		default:
			return change{}, false, nil
		}
		return c, true, nil

	case orders.EventOrderStatusChanged:
		p, err := kafka.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return change{}, false, err
		}

		c := change{day: day(p.CreatedAt, loc)}
		from, to := orders.Status(p.From), orders.Status(p.To)

		switch {
		case from == orders.StatusPending && to == orders.StatusCompleted:
			c.pending = -1
			if err := c.sale(1, p.Total, p.Items); err != nil {
				return change{}, false, err
			}
		case from == orders.StatusPending && to == orders.StatusCancelled:
			c.pending = -1
			c.cancelled = 1
		case from == orders.StatusCompleted && to == orders.StatusCancelled:
			c.cancelled = 1
			if err := c.sale(-1, p.Total, p.Items); err != nil {
				return change{}, false, err
			}
		default:
			return change{}, false, nil
		}
		return c, true, nil
	}

	return change{}, false, nil
}

func (c *change) sale(sign int64, total string, items []orders.EventItem) error {
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return fmt.Errorf("total %q: %w", total, err)
	}

	c.orders = sign
	c.satang = sign * amount.Shift(2).Round(0).IntPart()
	c.products = make(map[string]int64, len(items))
	for _, it := range items {
		c.items += sign * int64(it.Qty)
		c.products[it.Name] += sign * int64(it.Qty)
	}
	return nil
}

func day(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return orders.DatePart(t)
}

// Package reports summarizes completed sales over a period.
package reports

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var ErrInvalidPeriod = errors.New("invalid report period")

type Mode string

const (
	ModeDay    Mode = "day"
	ModeMonth  Mode = "month"
	ModeYear   Mode = "year"
	ModeCustom Mode = "custom"
)

// Period is the half-open range [From, Until).
type Period struct {
	From  time.Time `json:"from"`
	Until time.Time `json:"until"`
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.From) && t.Before(p.Until)
}

// PeriodFor resolves mode against now, in now's location. Custom takes year
// and an optional month (1-12, 0 for the whole year).
func PeriodFor(mode Mode, now time.Time, year, month int) (Period, error) {
	loc := now.Location()
	y, m, d := now.Date()

	switch mode {
	case ModeDay:
		from := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return Period{From: from, Until: from.AddDate(0, 0, 1)}, nil
	case ModeMonth:
		from := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Period{From: from, Until: from.AddDate(0, 1, 0)}, nil
	case ModeYear:
		from := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return Period{From: from, Until: from.AddDate(1, 0, 0)}, nil
	case ModeCustom:
		if year < 2000 || year > 9999 {
			return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
		}
		if month < 0 || month > 12 {
			return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
		}
		if month == 0 {
			from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
			return Period{From: from, Until: from.AddDate(1, 0, 0)}, nil
		}
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		return Period{From: from, Until: from.AddDate(0, 1, 0)}, nil
	default:
		return Period{}, fmt.Errorf("%w: mode %q", ErrInvalidPeriod, mode)
	}
}

type ProductSales struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Emoji     string          `json:"emoji,omitempty"`
	Qty       int             `json:"qty"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type Summary struct {
	Period        Period          `json:"period"`
	Revenue       decimal.Decimal `json:"revenue"`
	Orders        int             `json:"orders"`
	ItemsSold     int             `json:"items_sold"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	Products      []ProductSales  `json:"products"`
	Best          *ProductSales   `json:"best,omitempty"`
	Least         *ProductSales   `json:"least,omitempty"`
}

// Summarize counts completed orders created within p. Products are sorted
// by quantity sold, most first, ties by name.
func Summarize(all []orders.Order, p Period) Summary {
	sold := lo.Filter(all, func(o orders.Order, _ int) bool {
		return o.Status == orders.StatusCompleted && p.Contains(o.CreatedAt)
	})

	s := Summary{
		Period:        p,
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		Orders:        len(sold),
		Products:      []ProductSales{},
	}

	byProduct := map[uuid.UUID]*ProductSales{}
	for _, o := range sold {
		s.Revenue = s.Revenue.Add(o.Total.Amount)
		for _, it := range o.Items {
			s.ItemsSold += it.Qty

			ps, ok := byProduct[it.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.Name, Emoji: it.Emoji, Revenue: decimal.Zero}
				byProduct[it.ProductID] = ps
			}
			ps.Qty += it.Qty
			ps.Revenue = ps.Revenue.Add(it.Subtotal())
		}
	}

	for _, ps := range byProduct {
		s.Products = append(s.Products, *ps)
	}
	sort.Slice(s.Products, func(i, j int) bool {
		a, b := s.Products[i], s.Products[j]
		if a.Qty != b.Qty {
			return a.Qty > b.Qty
		}
		return a.Name < b.Name
	})

	if n := len(s.Products); n > 0 {
		s.Best = &s.Products[0]
		s.Least = &s.Products[n-1]
	}
	if s.Orders > 0 {
		s.AverageTicket = s.Revenue.Div(decimal.NewFromInt(int64(s.Orders))).Round(2)
	}

	return s
}

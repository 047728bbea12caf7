package httpx

import (
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/cart"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type orderView struct {
	ID            string            `json:"id"`
	Items         []orders.LineItem `json:"items"`
	Total         decimal.Decimal   `json:"total"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method"`
	Status        string            `json:"status"`
	CustomerID    *uuid.UUID        `json:"customer_id,omitempty"`
	EmployeeID    *uuid.UUID        `json:"employee_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toOrderView(o orders.Order, loc *time.Location) orderView {
	v := orderView{
		ID:            o.ID,
		Items:         o.Items,
		Total:         o.Total.Amount,
		Currency:      o.Total.Currency.String(),
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		CustomerID:    o.CustomerID,
		EmployeeID:    o.EmployeeID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if loc != nil {
		v.CreatedAt = v.CreatedAt.In(loc)
		v.UpdatedAt = v.UpdatedAt.In(loc)
	}
	if v.Items == nil {
		v.Items = []orders.LineItem{}
	}
	return v
}

func toOrderViews(list []orders.Order, loc *time.Location) []orderView {
	return lo.Map(list, func(o orders.Order, _ int) orderView { return toOrderView(o, loc) })
}

type cartView struct {
	Items []orders.LineItem `json:"items"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

func toCartView(c cart.Cart) cartView {
	items := c.Items
	if items == nil {
		items = []orders.LineItem{}
	}
	return cartView{Items: items, Count: c.Count(), Total: c.Total()}
}

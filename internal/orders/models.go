package orders

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentPromptPay PaymentMethod = "promptpay"
	PaymentCard      PaymentMethod = "card"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentCash:      {},
	PaymentPromptPay: {},
	PaymentCard:      {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if _, ok := validPaymentMethods[m]; ok {
		return m, nil
	}
	return "", fmt.Errorf("invalid payment method %q", s)
}

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func THB(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: currency.THB}
}

type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Emoji     string          `json:"emoji,omitempty"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Qty)))
}

func (i LineItem) Validate() error {
	if i.ProductID == uuid.Nil {
		return errors.New("product id is empty")
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("price of %s is negative", i.ProductID)
	}
	if i.Qty <= 0 {
		return fmt.Errorf("invalid qty for product %s", i.ProductID)
	}
	return nil
}

// TotalOf is Σ price×qty over items.
func TotalOf(items []LineItem) decimal.Decimal {
	return lo.Reduce(items, func(sum decimal.Decimal, it LineItem, _ int) decimal.Decimal {
		return sum.Add(it.Subtotal())
	}, decimal.Zero)
}

type Order struct {
	ID            string
	Items         []LineItem
	Total         Money
	PaymentMethod PaymentMethod
	Status        Status
	CustomerID    *uuid.UUID
	EmployeeID    *uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder is what checkout submits; id and total are derived on placement.
type NewOrder struct {
	Items         []LineItem
	PaymentMethod PaymentMethod
	Status        Status
	CustomerID    *uuid.UUID
	EmployeeID    *uuid.UUID
}

func (n NewOrder) Validate() error {
	if len(n.Items) == 0 {
		return ErrEmptyOrder
	}

	for _, it := range n.Items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
		}
	}

	if _, err := ToPaymentMethod(string(n.PaymentMethod)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}

	if n.Status != "" {
		if _, err := ToStatus(string(n.Status)); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
		}
	}

	return nil
}

// Filter has AND semantics across fields.
type Filter struct {
	CustomerID *uuid.UUID
	Statuses   []Status
	Since      *time.Time
	Until      *time.Time
	Limit      int
}

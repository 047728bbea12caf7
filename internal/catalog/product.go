// Package catalog is the shop's menu.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("invalid product")
	ErrUnavailable    = errors.New("product not available")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func ToStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusInactive:
		return st, nil
	case "":
		return StatusActive, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrInvalidProduct, s)
	}
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p Product) Active() bool { return p.Status == StatusActive }

// LineItem snapshots the product at its current price.
func (p Product) LineItem(qty int) orders.LineItem {
	return orders.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Qty:       qty,
		Emoji:     p.Emoji,
	}
}

// ProductInput is what the owner submits when creating or editing.
type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
}

func (in *ProductInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidProduct)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price %s is negative", ErrInvalidProduct, in.Price)
	}

	st, err := ToStatus(string(in.Status))
	if err != nil {
		return err
	}
	in.Status = st
	in.Price = in.Price.Round(2)
	return nil
}

// Package cart holds the items a session intends to order.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var (
	ErrNotInCart  = errors.New("product not in cart")
	ErrInvalidQty = errors.New("invalid quantity")
)

// Cart keeps items in the order they were first added.
type Cart struct {
	Items []orders.LineItem `json:"items"`
}

// Add puts qty of item into the cart, merging with an existing line for the
// same product. The price of the existing line is kept.
func (c *Cart) Add(item orders.LineItem, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQty, qty)
	}

	if i := c.index(item.ProductID); i >= 0 {
		c.Items[i].Qty += qty
		return nil
	}

	item.Qty = qty
	c.Items = append(c.Items, item)
	return nil
}

// UpdateQty changes a line by delta; a line that drops to zero is removed.
func (c *Cart) UpdateQty(productID uuid.UUID, delta int) error {
	i := c.index(productID)
	if i < 0 {
		return ErrNotInCart
	}

	c.Items[i].Qty += delta
	if c.Items[i].Qty <= 0 {
		c.Items = slices.Delete(c.Items, i, i+1)
	}
	return nil
}

func (c *Cart) SetQty(productID uuid.UUID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQty, qty)
	}

	i := c.index(productID)
	if i < 0 {
		return ErrNotInCart
	}

	if qty == 0 {
		c.Items = slices.Delete(c.Items, i, i+1)
		return nil
	}
	c.Items[i].Qty = qty
	return nil
}

func (c *Cart) Remove(productID uuid.UUID) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Items = slices.Delete(c.Items, i, i+1)
	return true
}

func (c *Cart) Clear() { c.Items = nil }

// Subtract takes ordered quantities out of the cart. Lines added or topped up
// since the order was read stay behind.
func (c *Cart) Subtract(ordered []orders.LineItem) {
	for _, it := range ordered {
		if it.Qty > 0 {
			_ = c.UpdateQty(it.ProductID, -it.Qty) // ErrNotInCart: already removed
		}
	}
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

func (c Cart) Total() decimal.Decimal { return orders.TotalOf(c.Items) }

// Count is the number of units, not lines.
func (c Cart) Count() int {
	return lo.SumBy(c.Items, func(it orders.LineItem) int { return it.Qty })
}

func (c Cart) index(productID uuid.UUID) int {
	return slices.IndexFunc(c.Items, func(it orders.LineItem) bool { return it.ProductID == productID })
}

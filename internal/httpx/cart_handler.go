package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-juice-pos/internal/cart"
	"github.com/ariefcatur/go-juice-pos/internal/catalog"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/promptpay"
	"github.com/ariefcatur/go-juice-pos/internal/settings"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type addItemReq struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

// updateItemReq sets qty, or moves it by delta when qty is absent.
type updateItemReq struct {
	Qty   *int `json:"qty"`
	Delta int  `json:"delta"`
}

type checkoutReq struct {
	PaymentMethod string `json:"payment_method"`
}

type checkoutResp struct {
	Order     orderView `json:"order"`
	PromptPay string    `json:"promptpay_payload,omitempty"`
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	c, err := a.Carts.Get(ctx, principal(r).SessionID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	p, err := a.Catalog.Get(ctx, req.ProductID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !p.Active() {
		a.writeError(w, r, fmt.Errorf("%w: %s", catalog.ErrUnavailable, p.Name))
		return
	}

	c, err := a.Carts.Update(ctx, principal(r).SessionID, func(c *cart.Cart) error {
		return c.Add(p.LineItem(0), req.Qty)
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req updateItemReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	c, err := a.Carts.Update(ctx, principal(r).SessionID, func(c *cart.Cart) error {
		if req.Qty != nil {
			return c.SetQty(id, *req.Qty)
		}
		return c.UpdateQty(id, req.Delta)
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "productID")
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	c, err := a.Carts.Update(ctx, principal(r).SessionID, func(c *cart.Cart) error {
		if !c.Remove(id) {
			return cart.ErrNotInCart
		}
		return nil
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartView(c))
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	if err := a.Carts.Clear(ctx, principal(r).SessionID); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkout turns the session's cart into an order. Staff ring up sales that
// are paid on the spot; customer orders wait in the queue as pending.
func (a *API) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	method, err := orders.ToPaymentMethod(req.PaymentMethod)
	if err != nil {
		a.writeError(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()
	ctx = orders.WithTraceID(ctx, middleware.GetReqID(r.Context()))

	var ppNumber string
	if method == orders.PaymentPromptPay {
		if ppNumber, err = a.Settings.Get(ctx, settings.KeyPromptPayNumber); err != nil {
			a.writeError(w, r, err)
			return
		}
		if ppNumber == "" {
			a.writeError(w, r, errPromptPayUnset)
			return
		}
	}

	p := principal(r)
	c, err := a.Carts.Get(ctx, p.SessionID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	items, err := a.repriceItems(ctx, c.Items)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	if method == orders.PaymentPromptPay {
		if err := promptpay.CheckAmount(orders.TotalOf(items)); err != nil {
			a.writeError(w, r, err)
			return
		}
	}

	n := orders.NewOrder{Items: items, PaymentMethod: method}
	if p.Role.Staff() {
		n.Status = orders.StatusCompleted
		n.EmployeeID = &p.UserID
	} else {
		n.Status = orders.StatusPending
		n.CustomerID = &p.UserID
	}

	o, err := a.Orders.PlaceOrder(ctx, n)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	// take out only what was ordered; lines added meanwhile stay
	if _, err := a.Carts.Update(ctx, p.SessionID, func(cur *cart.Cart) error {
		cur.Subtract(c.Items)
		return nil
	}); err != nil {
		a.log().WarnContext(ctx, "clear cart after checkout", "order_id", o.ID, "error", err)
	}

	resp := checkoutResp{Order: toOrderView(o, a.Location)}
	if method == orders.PaymentPromptPay {
		resp.PromptPay = promptpay.Encode(ppNumber, &o.Total.Amount)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// repriceItems rebuilds the cart lines from the current menu so an order
// never carries a stale price or a product taken off sale.
func (a *API) repriceItems(ctx context.Context, items []orders.LineItem) ([]orders.LineItem, error) {
	out := make([]orders.LineItem, 0, len(items))
	for _, it := range items {
		p, err := a.Catalog.Get(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", catalog.ErrUnavailable, it.Name)
		}
		if err != nil {
			return nil, err
		}
		if !p.Active() {
			return nil, fmt.Errorf("%w: %s", catalog.ErrUnavailable, p.Name)
		}
		out = append(out, p.LineItem(it.Qty))
	}
	return out, nil
}

package httpx

import (
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/ariefcatur/go-juice-pos/internal/receipt"
	"github.com/ariefcatur/go-juice-pos/internal/settings"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultOrderLimit = 200

type statusReq struct {
	Status string `json:"status"`
}

// listOrders takes optional status (repeatable), date=today and limit.
func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	f, err := a.orderFilter(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	list, err := a.History.ListOrders(ctx, f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderViews(list, a.Location))
}

func (a *API) myOrders(w http.ResponseWriter, r *http.Request) {
	f, err := a.orderFilter(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	uid := principal(r).UserID
	f.CustomerID = &uid

	ctx, cancel := a.ctx(r)
	defer cancel()

	list, err := a.History.ListOrders(ctx, f)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderViews(list, a.Location))
}

func (a *API) orderFilter(r *http.Request) (orders.Filter, error) {
	q := r.URL.Query()
	f := orders.Filter{Limit: defaultOrderLimit}

	for _, v := range q["status"] {
		s, err := orders.ToStatus(v)
		if err != nil {
			return f, errBadRequest
		}
		f.Statuses = append(f.Statuses, s)
	}

	if q.Get("date") == "today" {
		since := orders.StartOfDay(a.now())
		until := since.AddDate(0, 0, 1)
		f.Since, f.Until = &since, &until
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			return f, errBadRequest
		}
		f.Limit = n
	}
	return f, nil
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := a.visibleOrder(r, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o, a.Location))
}

func (a *API) changeStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()
	ctx = orders.WithTraceID(ctx, middleware.GetReqID(r.Context()))

	o, err := a.Orders.ChangeStatus(ctx, chi.URLParam(r, "id"), orders.Status(req.Status))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderView(o, a.Location))
}

func (a *API) getReceipt(w http.ResponseWriter, r *http.Request) {
	o, err := a.visibleOrder(r, chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	all, err := a.Settings.All(ctx)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	shop := receipt.Shop{Name: all[settings.KeyShopName], Phone: all[settings.KeyShopPhone]}
	if err := receipt.Render(w, o, shop, a.Location); err != nil {
		a.log().ErrorContext(ctx, "write receipt", "order_id", o.ID, "error", err)
	}
}

// visibleOrder loads an order the caller may see: staff see all, customers
// only their own.
func (a *API) visibleOrder(r *http.Request, id string) (orders.Order, error) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	o, err := a.Orders.GetOrder(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}

	p := principal(r)
	if p.Role == profiles.RoleCustomer && (o.CustomerID == nil || *o.CustomerID != p.UserID) {
		return orders.Order{}, errNotYourOrder
	}
	return o, nil
}

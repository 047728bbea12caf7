package httpx

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/reports"
)

func (a *API) dashboardToday(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.ctx(r)
	defer cancel()

	snap, err := a.Board.Snapshot(ctx, a.now())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// getReport takes mode=day|month|year|custom; custom also takes year and
// an optional month.
func (a *API) getReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	mode := reports.Mode(q.Get("mode"))
	if mode == "" {
		mode = reports.ModeDay
	}

	year, month, err := yearMonth(q.Get("year"), q.Get("month"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	period, err := reports.PeriodFor(mode, a.now(), year, month)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	ctx, cancel := a.ctx(r)
	defer cancel()

	sold, err := a.History.ListOrders(ctx, orders.Filter{
		Statuses: []orders.Status{orders.StatusCompleted},
		Since:    &period.From,
		Until:    &period.Until,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reports.Summarize(sold, period))
}

func yearMonth(y, m string) (int, int, error) {
	var year, month int
	var err error
	if y != "" {
		if year, err = strconv.Atoi(y); err != nil {
			return 0, 0, fmt.Errorf("%w: year %q", errBadRequest, y)
		}
	}
	if m != "" {
		if month, err = strconv.Atoi(m); err != nil {
			return 0, 0, fmt.Errorf("%w: month %q", errBadRequest, m)
		}
	}
	return year, month, nil
}

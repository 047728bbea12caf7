package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-juice-pos/internal/auth"
	"github.com/ariefcatur/go-juice-pos/internal/cart"
	"github.com/ariefcatur/go-juice-pos/internal/catalog"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/ariefcatur/go-juice-pos/internal/promptpay"
	"github.com/ariefcatur/go-juice-pos/internal/reports"
	"github.com/ariefcatur/go-juice-pos/internal/settings"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errBadRequest     = errors.New("bad request")
	errPromptPayUnset = errors.New("promptpay number is not configured")
	errNotYourOrder   = errors.New("order belongs to another customer")
	errDeleteSelf     = errors.New("cannot delete your own account")
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json: %w", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, profiles.ErrNotFound),
		errors.Is(err, cart.ErrNotInCart),
		errors.Is(err, errNotYourOrder):
		return http.StatusNotFound

	case errors.Is(err, errBadRequest),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidOrder),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, profiles.ErrInvalidProfile),
		errors.Is(err, profiles.ErrPasswordTooWeak),
		errors.Is(err, promptpay.ErrInvalidIdentifier),
		errors.Is(err, promptpay.ErrInvalidAmount),
		errors.Is(err, settings.ErrUnknownKey),
		errors.Is(err, reports.ErrInvalidPeriod),
		errors.Is(err, cart.ErrInvalidQty):
		return http.StatusBadRequest

	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrIDCollision),
		errors.Is(err, profiles.ErrUsernameTaken),
		errors.Is(err, catalog.ErrUnavailable),
		errors.Is(err, cart.ErrConflict),
		errors.Is(err, errPromptPayUnset),
		errors.Is(err, errDeleteSelf):
		return http.StatusConflict

	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code. Server-side failures are logged and
// their detail kept from the client.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		a.log().ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, code, map[string]string{"error": http.StatusText(code)})
		return
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (a *API) log() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

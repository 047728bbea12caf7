package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/ariefcatur/go-juice-pos/internal/profiles"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Middleware rejects requests without a valid bearer token. The token may
// also come in the access_token query parameter, for EventSource clients
// that cannot set headers.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r)
		if token == "" {
			deny(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}

		p, err := s.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				deny(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			slog.ErrorContext(r.Context(), "authenticate", "error", err)
			deny(w, http.StatusInternalServerError, errors.New("internal error"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireRole lets through principals holding one of roles. It must sit
// behind Middleware.
func RequireRole(roles ...profiles.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			if !slices.Contains(roles, p.Role) {
				deny(w, http.StatusForbidden, ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func deny(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

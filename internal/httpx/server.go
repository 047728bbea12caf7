package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/auth"
	"github.com/ariefcatur/go-juice-pos/internal/cart"
	"github.com/ariefcatur/go-juice-pos/internal/catalog"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	"github.com/ariefcatur/go-juice-pos/internal/profiles"
	"github.com/ariefcatur/go-juice-pos/internal/realtime"
	"github.com/ariefcatur/go-juice-pos/internal/salesboard"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const defaultTimeout = 5 * time.Second

type ProfileStore interface {
	Create(ctx context.Context, n profiles.NewProfile) (profiles.Profile, error)
	Get(ctx context.Context, id uuid.UUID) (profiles.Profile, error)
	List(ctx context.Context, roles ...profiles.Role) ([]profiles.Profile, error)
	Update(ctx context.Context, id uuid.UUID, c profiles.Changes) (profiles.Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CatalogStore interface {
	List(ctx context.Context, activeOnly bool) ([]catalog.Product, error)
	Get(ctx context.Context, id uuid.UUID) (catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id uuid.UUID, in catalog.ProductInput) (catalog.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type OrderService interface {
	PlaceOrder(ctx context.Context, n orders.NewOrder) (orders.Order, error)
	GetOrder(ctx context.Context, id string) (orders.Order, error)
	ChangeStatus(ctx context.Context, id string, to orders.Status) (orders.Order, error)
}

type OrderLister interface {
	ListOrders(ctx context.Context, f orders.Filter) ([]orders.Order, error)
}

type CartStore interface {
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
	Update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
}

type SalesBoard interface {
	Snapshot(ctx context.Context, day time.Time) (salesboard.Snapshot, error)
}

// API serves the shop over HTTP.
type API struct {
	Auth     *auth.Service
	Profiles ProfileStore
	Catalog  CatalogStore
	Orders   OrderService
	History  OrderLister
	Carts    CartStore
	Settings SettingsStore
	Board    SalesBoard
	Hub      *realtime.Hub

	Location *time.Location
	Timeout  time.Duration
	Log      *slog.Logger
	Now      func() time.Time
}

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Register mounts every route on r. The event stream is long-lived and sits
// outside the request timeout.
func (a *API) Register(r chi.Router) {
	staff := auth.RequireRole(profiles.RoleOwner, profiles.RoleEmployee)
	owner := auth.RequireRole(profiles.RoleOwner)

	r.With(a.Auth.Middleware, staff).Get("/events", a.streamEvents)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))

		r.Post("/auth/register", a.register)
		r.Post("/auth/login", a.login)
		r.Get("/products", a.listProducts)
		r.Get("/products/{id}", a.getProduct)

		r.Group(func(r chi.Router) {
			r.Use(a.Auth.Middleware)

			r.Post("/auth/logout", a.logout)
			r.Get("/me", a.getMe)
			r.Patch("/me", a.updateMe)

			r.Get("/cart", a.getCart)
			r.Post("/cart/items", a.addCartItem)
			r.Patch("/cart/items/{productID}", a.updateCartItem)
			r.Delete("/cart/items/{productID}", a.removeCartItem)
			r.Delete("/cart", a.clearCart)
			r.Post("/cart/checkout", a.checkout)

			r.Get("/orders/mine", a.myOrders)
			r.Get("/orders/{id}", a.getOrder)
			r.Get("/orders/{id}/receipt", a.getReceipt)

			r.Get("/payments/promptpay", a.promptPayPayload)
			r.Get("/payments/promptpay.png", a.promptPayImage)

			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Get("/orders", a.listOrders)
				r.Patch("/orders/{id}/status", a.changeStatus)
				r.Get("/dashboard/today", a.dashboardToday)
			})

			r.Group(func(r chi.Router) {
				r.Use(owner)
				r.Get("/products/all", a.listAllProducts)
				r.Post("/products", a.createProduct)
				r.Put("/products/{id}", a.updateProduct)
				r.Delete("/products/{id}", a.deleteProduct)

				r.Get("/users", a.listUsers)
				r.Post("/users", a.createUser)
				r.Get("/users/{id}", a.getUser)
				r.Patch("/users/{id}", a.updateUser)
				r.Delete("/users/{id}", a.deleteUser)

				r.Get("/settings", a.getSettings)
				r.Put("/settings", a.putSettings)

				r.Get("/reports", a.getReport)
			})
		})
	})
}

func (a *API) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	t := a.Timeout
	if t <= 0 {
		t = defaultTimeout
	}
	return context.WithTimeout(r.Context(), t)
}

func (a *API) now() time.Time {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	if a.Location != nil {
		now = now.In(a.Location)
	}
	return now
}

// principal is set by auth.Middleware on every route that calls this.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.FromContext(r.Context())
	return p
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errBadRequest
	}
	return id, nil
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/httpx"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/services/order"
	"restaurant-pos/internal/services/reports"
	"restaurant-pos/internal/services/tables"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Orders  *order.Handler
	Tables  *tables.Handler
	Reports *reports.Handler
}

// RouterConfig holds the settings the router needs besides its handlers.
type RouterConfig struct {
	JWTSecret string
	AdminRole string
}

// NewRouter mounts every endpoint. Placing orders and reading reports take
// the admin role; reading orders and tables takes any valid token.
func NewRouter(h Handlers, db Pinger, cfg RouterConfig, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(httpx.WithLogging(log))

	r.Get("/health", health(db))

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(cfg.JWTSecret))

		r.Get("/orders/{id}", h.Orders.GetOrder)
		r.Get("/tables", h.Tables.ListTables)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(cfg.AdminRole))

			r.Post("/orders", h.Orders.PlaceOrder)
			r.Route("/reports", func(r chi.Router) {
				r.Get("/sales", h.Reports.Sales)
				r.Get("/popular-products", h.Reports.PopularProducts)
				r.Get("/tables", h.Reports.Tables)
				r.Get("/dashboard", h.Reports.Dashboard)
			})
		})
	})

	return r
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

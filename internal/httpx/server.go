package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Handlers bundles every API handler; Register mounts them under /api.
type Handlers struct {
	Auth      *AuthHandler
	Catalog   *CatalogHandler
	Cart      *CartHandler
	Orders    *OrdersHandler
	Dashboard *DashboardHandler
	Chat      *ChatHandler
}

func (h *Handlers) Register(r *chi.Mux) {
	r.Route("/api", func(api chi.Router) {
		h.Auth.Register(api)
		h.Catalog.Register(api)

		api.Group(func(priv chi.Router) {
			priv.Use(RequireDealer(h.Auth.Auth))
			h.Auth.RegisterPrivate(priv)
			h.Cart.Register(priv)
			h.Orders.Register(priv)
			h.Dashboard.Register(priv)
			h.Chat.Register(priv)
		})
	})
}

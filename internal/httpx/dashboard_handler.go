package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/humsafar/dealer-api/internal/service"
)

type DashboardHandler struct {
	Dashboard *service.DashboardService
}

func (h *DashboardHandler) Register(r chi.Router) {
	r.Get("/dashboard/stats", h.stats)
}

func (h *DashboardHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Stats(r.Context(), dealerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

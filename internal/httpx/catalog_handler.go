package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/service"
)

type CatalogHandler struct {
	Products *service.ProductService
}

func (h *CatalogHandler) Register(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{id}", h.get)
	r.Post("/seed-data", h.seed)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *CatalogHandler) seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.Products.Seed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if n == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Products already exist"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("%d products added successfully", n)})
}

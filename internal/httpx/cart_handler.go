package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/service"
)

type CartHandler struct {
	Cart *service.CartService
}

func (h *CartHandler) Register(r chi.Router) {
	r.Get("/cart", h.list)
	r.Post("/cart", h.add)
	r.Put("/cart/{id}", h.update)
	r.Delete("/cart/{id}", h.remove)
	r.Delete("/cart", h.clear)
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	lines, err := h.Cart.List(r.Context(), dealerFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	writeJSON(w, http.StatusOK, lines)
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	req := addToCartReq{Quantity: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		badRequest(w, "missing product_id")
		return
	}

	item, err := h.Cart.Add(r.Context(), dealerFrom(r).ID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type updateCartReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid json")
		return
	}

	if err := h.Cart.UpdateQuantity(r.Context(), dealerFrom(r).ID, chi.URLParam(r, "id"), req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart updated successfully"})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Remove(r.Context(), dealerFrom(r).ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.Cart.Clear(r.Context(), dealerFrom(r).ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared successfully"})
}

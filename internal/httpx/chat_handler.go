package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/humsafar/dealer-api/internal/service"
)

type ChatHandler struct {
	Assistant *service.AssistantService
}

func (h *ChatHandler) Register(r chi.Router) {
	r.Post("/chat", h.chat)
}

type chatReq struct {
	Message string `json:"message"`
}

func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		badRequest(w, "missing message")
		return
	}

	reply := h.Assistant.Answer(r.Context(), dealerFrom(r), req.Message)
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

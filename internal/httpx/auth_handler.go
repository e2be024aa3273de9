package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/humsafar/dealer-api/internal/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/send-otp", h.sendOTP)
	r.Post("/auth/verify-otp", h.verifyOTP)
}

func (h *AuthHandler) RegisterPrivate(r chi.Router) {
	r.Get("/auth/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if in.Name == "" || in.Phone == "" || in.Email == "" || in.BusinessName == "" || in.Address == "" {
		badRequest(w, "missing fields")
		return
	}

	dealer, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dealer)
}

type sendOTPReq struct {
	Phone string `json:"phone"`
}

func (h *AuthHandler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		badRequest(w, "missing phone")
		return
	}

	code, err := h.Auth.IssueOTP(r.Context(), req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}

	// SMS transport is out of scope; the code is logged and echoed back.
	// TODO: drop the otp field from the response once an SMS gateway is wired in.
	slog.Info("otp issued", "phone", req.Phone, "otp", code)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "OTP sent successfully",
		"otp":     code,
	})
}

type verifyOTPReq struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.OTP == "" {
		badRequest(w, "missing fields")
		return
	}

	token, dealer, err := h.Auth.VerifyOTP(r.Context(), req.Phone, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"dealer": dealer,
	})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dealerFrom(r))
}

package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/humsafar/dealer-api/internal/service"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	// present only for insufficient_credit
	AvailableCredit *int64 `json:"available_credit,omitempty"`
	RequiredAmount  *int64 `json:"required_amount,omitempty"`
}

// writeError maps the service error taxonomy onto HTTP statuses and stable
// machine-readable codes. Unknown errors become opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	var credit *service.InsufficientCreditError
	switch {
	case errors.As(err, &credit):
		writeJSON(w, http.StatusPaymentRequired, errorBody{
			Error:           credit.Error(),
			Code:            "insufficient_credit",
			AvailableCredit: &credit.Available,
			RequiredAmount:  &credit.Required,
		})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Code: "not_found"})
	case errors.Is(err, service.ErrPhoneRegistered):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), Code: "phone_registered"})
	case errors.Is(err, service.ErrInvalidOTP):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "invalid_otp"})
	case errors.Is(err, service.ErrOTPExpired):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "otp_expired"})
	case errors.Is(err, service.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error(), Code: "unauthenticated"})
	case errors.Is(err, service.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "invalid_quantity"})
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "invalid_payment_method"})
	case errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "empty_cart"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "internal"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: "bad_request"})
}

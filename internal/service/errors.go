package service

import (
	"errors"
	"fmt"

	"github.com/humsafar/dealer-api/internal/domain"
)

var (
	ErrPhoneRegistered      = errors.New("phone number already registered")
	ErrInvalidOTP           = errors.New("invalid otp")
	ErrOTPExpired           = errors.New("otp expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidQuantity      = errors.New("quantity must be between 1 and 10000")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyCart            = errors.New("cart is empty")
)

// InsufficientCreditError carries both sides of the failed credit check so
// the caller can render them.
type InsufficientCreditError struct {
	Available int64
	Required  int64
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("insufficient credit: available %s, required %s",
		domain.Rupees(e.Available), domain.Rupees(e.Required))
}

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/repository"
)

const otpValidity = 5 * time.Minute

// OTPStore holds the single pending one-time code per phone. Backed by
// redis in production and the memory store in tests.
type OTPStore interface {
	PutOTP(ctx context.Context, phone, code string, expiresAt time.Time) error
	GetOTP(ctx context.Context, phone string) (code string, expiresAt time.Time, err error)
	DeleteOTP(ctx context.Context, phone string) error
}

type AuthService struct {
	dealers repository.DealerRepo
	otps    OTPStore
	now     func() time.Time
}

func NewAuthService(dealers repository.DealerRepo, otps OTPStore) *AuthService {
	return &AuthService{dealers: dealers, otps: otps, now: time.Now}
}

type RegisterInput struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	Address      string `json:"address"`
	GSTNumber    string `json:"gst_number"`
}

// Register creates a dealer with the default credit terms. The phone number
// is the registration key; a second registration with it fails.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Dealer, error) {
	d := &domain.Dealer{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		BusinessName: in.BusinessName,
		Address:      in.Address,
		GSTNumber:    in.GSTNumber,
		CreditLimit:  domain.DefaultCreditLimitPaise,
		Outstanding:  0,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.dealers.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return nil, ErrPhoneRegistered
		}
		return nil, fmt.Errorf("create dealer: %w", err)
	}
	return d, nil
}

// IssueOTP generates a fresh 6-digit code, replacing any pending one for
// the phone.
func (s *AuthService) IssueOTP(ctx context.Context, phone string) (string, error) {
	if _, err := s.dealers.GetByPhone(ctx, phone); err != nil {
		return "", err
	}
	code := domain.GenerateOTP()
	if err := s.otps.PutOTP(ctx, phone, code, s.now().UTC().Add(otpValidity)); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// VerifyOTP checks the pending code and, on success, consumes it and
// rotates the dealer's session token. The previous token stops working.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, *domain.Dealer, error) {
	d, err := s.dealers.GetByPhone(ctx, phone)
	if err != nil {
		return "", nil, err
	}

	stored, expiresAt, err := s.otps.GetOTP(ctx, phone)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidOTP
	}
	if err != nil {
		return "", nil, fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return "", nil, ErrInvalidOTP
	}
	if s.now().UTC().After(expiresAt) {
		return "", nil, ErrOTPExpired
	}

	// single use
	if err := s.otps.DeleteOTP(ctx, phone); err != nil {
		return "", nil, fmt.Errorf("consume otp: %w", err)
	}

	token := domain.GenerateToken()
	if err := s.dealers.SetAuthToken(ctx, d.ID, token); err != nil {
		return "", nil, fmt.Errorf("store token: %w", err)
	}
	d.AuthToken = token
	return token, d, nil
}

// Authenticate resolves a bearer token to its dealer.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Dealer, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	d, err := s.dealers.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/redis/go-redis/v9"
)

// OTPStore keeps the single outstanding one-time code per phone. Issuing a
// new code overwrites the previous one; the expiry is stored in the value
// so the auth service can tell an expired code from a wrong one.
type OTPStore struct{ RDB *redis.Client }

type otpRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *OTPStore) PutOTP(ctx context.Context, phone, code string, expiresAt time.Time) error {
	b, err := json.Marshal(otpRecord{Code: code, ExpiresAt: expiresAt})
	if err != nil {
		return err
	}
	return s.RDB.Set(ctx, fmt.Sprintf(KeyOTP, phone), b, TTLOTPRetention).Err()
}

func (s *OTPStore) GetOTP(ctx context.Context, phone string) (string, time.Time, error) {
	b, err := s.RDB.Get(ctx, fmt.Sprintf(KeyOTP, phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", time.Time{}, repository.ErrNotFound
	}
	if err != nil {
		return "", time.Time{}, err
	}
	var rec otpRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return "", time.Time{}, err
	}
	return rec.Code, rec.ExpiresAt, nil
}

func (s *OTPStore) DeleteOTP(ctx context.Context, phone string) error {
	return s.RDB.Del(ctx, fmt.Sprintf(KeyOTP, phone)).Err()
}

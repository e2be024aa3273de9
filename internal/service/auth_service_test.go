package service

import (
	"context"
	"testing"
	"time"

	"github.com/humsafar/dealer-api/internal/memory"
	"github.com/humsafar/dealer-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *memory.Store) {
	store := memory.NewStore()
	return NewAuthService(store, store), store
}

func TestRegisterDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	d, err := auth.Register(ctx, RegisterInput{Name: "Ravi", Phone: "9876543210", BusinessName: "Ravi Traders"})
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, int64(10_000_000), d.CreditLimit)
	assert.Zero(t, d.Outstanding)

	_, err = auth.Register(ctx, RegisterInput{Name: "Other", Phone: "9876543210"})
	assert.ErrorIs(t, err, ErrPhoneRegistered)
}

func TestIssueOTPUnknownPhone(t *testing.T) {
	auth, _ := newAuthFixture()

	_, err := auth.IssueOTP(context.Background(), "9999999999")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVerifyOTPFlow(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	_, err := auth.Register(ctx, RegisterInput{Name: "Ravi", Phone: "9876543210"})
	require.NoError(t, err)

	code, err := auth.IssueOTP(ctx, "9876543210")
	require.NoError(t, err)
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, _, err = auth.VerifyOTP(ctx, "9876543210", wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	token, dealer, err := auth.VerifyOTP(ctx, "9876543210", code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ravi", dealer.Name)

	// single use
	_, _, err = auth.VerifyOTP(ctx, "9876543210", code)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	got, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, dealer.ID, got.ID)
}

func TestVerifyOTPExpired(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	_, err := auth.Register(ctx, RegisterInput{Name: "Ravi", Phone: "9876543210"})
	require.NoError(t, err)
	code, err := auth.IssueOTP(ctx, "9876543210")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	_, _, err = auth.VerifyOTP(ctx, "9876543210", code)
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyOTPRotatesToken(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuthFixture()

	_, err := auth.Register(ctx, RegisterInput{Name: "Ravi", Phone: "9876543210"})
	require.NoError(t, err)

	code, err := auth.IssueOTP(ctx, "9876543210")
	require.NoError(t, err)
	first, _, err := auth.VerifyOTP(ctx, "9876543210", code)
	require.NoError(t, err)

	code, err = auth.IssueOTP(ctx, "9876543210")
	require.NoError(t, err)
	second, _, err := auth.VerifyOTP(ctx, "9876543210", code)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = auth.Authenticate(ctx, first)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = auth.Authenticate(ctx, second)
	assert.NoError(t, err)
}

func TestAuthenticateEmptyToken(t *testing.T) {
	auth, _ := newAuthFixture()

	_, err := auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

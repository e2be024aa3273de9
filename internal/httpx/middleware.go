package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/humsafar/dealer-api/internal/domain"
	"github.com/humsafar/dealer-api/internal/service"
)

type dealerKey struct{}

// RequireDealer resolves the bearer token and puts the dealer in the
// request context. Requests without a valid token get 401.
func RequireDealer(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, service.ErrInvalidToken)
				return
			}
			dealer, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), dealerKey{}, dealer)))
		})
	}
}

func dealerFrom(r *http.Request) *domain.Dealer {
	d, _ := r.Context().Value(dealerKey{}).(*domain.Dealer)
	return d
}

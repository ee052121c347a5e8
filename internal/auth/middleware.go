package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/strefethen/sonos-nowplaying-go/internal/api"
	"github.com/strefethen/sonos-nowplaying-go/internal/apperrors"
)

// Middleware protects state-changing requests with a bearer token. Reads stay
// public so a dashboard can render without credentials. An empty secret
// disables the check.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || isReadOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Missing Authorization header"))
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Invalid Authorization header format"))
				return
			}

			payload, err := VerifyToken(secret, token)
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					api.WriteError(w, r, apperrors.NewUnauthorizedError("Token has expired", apperrors.ErrorCodeAuthTokenExpired))
					return
				}
				api.WriteError(w, r, apperrors.NewUnauthorizedError("Invalid token", apperrors.ErrorCodeAuthTokenInvalid))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), Client(payload))))
		})
	}
}

func isReadOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

package middleware

import (
	"crypto/subtle"
	"net/http"
)

// TokenHeader carries the per-process token on every API request.
const TokenHeader = "X-Markan-Token"

// RequireToken creates middleware for API routes that rejects requests
// without the expected token. An empty token rejects everything.
func RequireToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(TokenHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

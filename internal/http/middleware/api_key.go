package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKey enforces the X-API-Key header for caller-facing endpoints. An
// empty configured key disables the endpoint rather than opening it up.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				http.Error(w, "api auth disabled", http.StatusUnauthorized)
				return
			}
			got := strings.TrimSpace(r.Header.Get("X-API-Key"))
			if got == "" {
				http.Error(w, "missing api key", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, "invalid api key", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

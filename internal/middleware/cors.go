// Package middleware holds HTTP middleware shared by every route.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows any origin to call the JSON endpoints, including credentialed requests
// that carry the session cookie.
func CORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowOriginFunc:  func(string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler(next)
}

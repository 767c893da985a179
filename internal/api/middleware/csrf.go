package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
)

// CSRF protects every unsafe request with a gorilla/csrf token. When the
// console is served over plain HTTP (secure false), requests are marked as
// such so the origin checks compare against http:// rather than assume TLS.
func CSRF(key []byte, secure bool, trustedOrigins []string) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

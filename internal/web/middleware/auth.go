package middleware

import (
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequireAdmin is middleware that protects the admin routes with HTTP basic
// auth. An empty password disables the check.
func RequireAdmin(username, password string) func(http.Handler) http.Handler {
	if password == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return chiMiddleware.BasicAuth("clinic-admin", map[string]string{username: password})
}

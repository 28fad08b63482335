package middleware

import (
	"net/http"

	"blockdocs/internal/auth"
)

// Auth returns a new auth middleware
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return authService.RequireAdmin
}

// WithAdmin returns a new with admin middleware
func WithAdmin(authService *auth.Service) func(http.Handler) http.Handler {
	return authService.WithAdmin
}

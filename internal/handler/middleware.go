package handler

import (
	"context"
	"net/http"
	"strings"

	"pdf-to-qr-products/internal/domain"
)

// accessTokenCookie is read when no Authorization header is sent, so plain
// page loads and form posts from the browser carry the session too.
const accessTokenCookie = "access_token"

// AuthMiddleware validates Supabase JWT tokens
type AuthMiddleware struct {
	authService domain.AuthService
	logger      domain.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService domain.AuthService, logger domain.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		logger:      logger,
	}
}

// Middleware rejects requests without a valid token.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, status, message := extractToken(r)
		if status != 0 {
			writeError(w, status, message)
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Error("Token validation failed", err, "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, withUser(r, user))
	})
}

// Optional attaches the user when the request carries a valid token and lets
// every request through. Handlers decide what anonymous callers get.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, status, _ := extractToken(r)
		if status != 0 {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Debug("Ignoring invalid token on optional route", "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withUser(r, user))
	})
}

// extractToken reads the bearer token, falling back to the session cookie.
// A non-zero status means no usable token was sent.
func extractToken(r *http.Request) (string, int, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
			return c.Value, 0, ""
		}
		return "", http.StatusUnauthorized, "Authorization header required"
	}

	// Extract token from "Bearer <token>" format
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", http.StatusUnauthorized, "Invalid authorization header format"
	}

	token := parts[1]
	if token == "" {
		return "", http.StatusUnauthorized, "Token required"
	}
	return token, 0, ""
}

func withUser(r *http.Request, user *domain.SupabaseUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

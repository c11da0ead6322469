// Package middleware provides HTTP middleware functions
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/findosh/showroom/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Logger attaches logger to every request and writes one access line per
// response
func Logger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Chain(next,
			hlog.NewHandler(logger),
			hlog.RequestIDHandler("request_id", "X-Request-Id"),
			hlog.RemoteAddrHandler("remote_addr"),
			hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
				event := hlog.FromRequest(r).Info()
				if status >= http.StatusInternalServerError {
					event = hlog.FromRequest(r).Error()
				}
				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", status).
					Int("size", size).
					Dur("duration", duration).
					Msg("request")
			}),
		)
	}
}

// SecurityHeaders adds security headers to all responses
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// Recover handles panics gracefully
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				hlog.FromRequest(r).Error().
					Interface("panic", err).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Authenticator resolves the user behind a request, or nil. The error is
// reserved for store failures.
type Authenticator interface {
	Authenticate(r *http.Request) (*models.User, error)
}

// Auth middleware for protected routes
type Auth struct {
	authenticator Authenticator
}

// NewAuth creates a new auth middleware
func NewAuth(authenticator Authenticator) *Auth {
	return &Auth{authenticator: authenticator}
}

// RequireAuth rejects anonymous requests with 401 before they reach next
func (m *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(w, r)
		if !ok {
			return
		}
		if user == nil {
			WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth adds user to context if authenticated, but doesn't require it
func (m *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.resolve(w, r)
		if !ok {
			return
		}
		if user != nil {
			ctx := context.WithValue(r.Context(), UserContextKey, user)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// resolve answers 500 itself when the user lookup fails
func (m *Auth) resolve(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := m.authenticator.Authenticate(r)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("session lookup failed")
		WriteError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return user, true
}

// GetUser retrieves the user from the request context
func GetUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WriteError writes {"error": message} with the given status
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Chain applies middleware in order
func Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

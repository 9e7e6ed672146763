package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/brewedawakening/commerce/internal/security/auth"
	"github.com/brewedawakening/commerce/internal/security/ratelimit"
)

type SubjectContextKey struct{}

// PublicPath reports whether a request needs no bearer token: registration,
// login, username lookup, order creation, and the operational endpoints.
func PublicPath(r *http.Request) bool {
	if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" {
		return true
	}
	if r.Method == http.MethodPost && (r.URL.Path == "/users" || r.URL.Path == "/users/login" || r.URL.Path == "/orders") {
		return true
	}
	if strings.HasPrefix(r.URL.Path, "/users/get-user/") {
		return true
	}
	if strings.HasPrefix(r.URL.Path, "/products") {
		return true
	}
	return false
}

// JWTMiddleware verifies the bearer token on protected paths and stores the
// authenticated subject in the request context. Handlers still receive the
// raw Authorization header, which the profile path forwards downstream.
func JWTMiddleware(tokens *auth.TokenAuthority, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PublicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			subjectID, err := tokens.Verify(tokenString)
			if err != nil {
				log.Info("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectContextKey{}, subjectID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitMiddleware limits authenticated callers by subject id
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PublicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			subjectID := GetSubjectFromContext(r.Context())
			if !limiter.Allow(subjectID) {
				log.Warn("rate limit exceeded", slog.String("subject_id", subjectID))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetSubjectFromContext returns the authenticated subject id, if any
func GetSubjectFromContext(ctx context.Context) string {
	if s := ctx.Value(SubjectContextKey{}); s != nil {
		if subject, ok := s.(string); ok {
			return subject
		}
	}
	return ""
}

type requestIDKey struct{}

// RequestIDMiddleware attaches a request ID to the context and response
// headers for traceability
func RequestIDMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := generateRequestID()
			w.Header().Set("X-Request-ID", reqID)

			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			start := time.Now()

			next.ServeHTTP(w, r.WithContext(ctx))

			log.Debug("request handled",
				slog.String("request_id", reqID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// GetRequestID returns the request id from the context, if any
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf)
}

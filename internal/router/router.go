package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/blogramhq/blogram/internal/account"
	"github.com/blogramhq/blogram/internal/post"
	"github.com/blogramhq/blogram/pkg/token"
	"github.com/blogramhq/blogram/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"request_id", w.Header().Get("X-Request-ID"),
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware tags every request with a KSUID for log correlation.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = utilities.NewRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated account ID on the request context.
func RequireAuth(tokens *token.Manager, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w)
				return
			}
			accountID, err := tokens.Verify(raw)
			if err != nil {
				logger.Debugw("token rejected", "err", err)
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(token.ContextWithAccountID(r.Context(), accountID)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthenticated"})
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(logger *zap.SugaredLogger, tokens *token.Manager, accounts *account.Handler, posts *post.Handler) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// public welcome payload, no auth
	mux.HandleFunc("GET /api/public", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":   "Welcome to the blogram API!",
			"timestamp": time.Now().UTC(),
			"version":   "1.0.0",
			"status":    "active",
			"endpoints": map[string]string{
				"public":  "/api/public",
				"secure":  "/api/secure",
				"posts":   "/api/posts",
				"profile": "/api/profile",
			},
		})
	})

	// authentication
	mux.HandleFunc("POST /auth/register", accounts.Register)
	mux.HandleFunc("POST /auth/login", accounts.Login)

	// authenticated endpoints
	authed := RequireAuth(tokens, logger)
	mux.Handle("GET /api/secure", authed(http.HandlerFunc(accounts.Secure)))
	mux.Handle("GET /api/profile", authed(http.HandlerFunc(accounts.GetProfile)))
	mux.Handle("PUT /api/profile", authed(http.HandlerFunc(accounts.UpdateProfile)))
	mux.Handle("GET /api/posts", authed(http.HandlerFunc(posts.List)))
	mux.Handle("POST /api/posts", authed(http.HandlerFunc(posts.Create)))
	mux.Handle("GET /api/posts/{id}", authed(http.HandlerFunc(posts.Get)))
	mux.Handle("PUT /api/posts/{id}", authed(http.HandlerFunc(posts.Update)))
	mux.Handle("DELETE /api/posts/{id}", authed(http.HandlerFunc(posts.Delete)))

	// wrap with request id, then security headers, then logging
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(RequestIDMiddleware()(mux)))
	return handler
}

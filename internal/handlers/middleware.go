package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/pep299/american-standard/internal/logging"
)

const (
	requestIDHeader  = "X-Request-ID"
	cronSecretHeader = "X-Cron-Secret"
)

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Cron-Secret")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags the request with an id and logs it on completion
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(logging.WithRequestID(r.Context(), id))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		logging.For(r.Context(), s.logger).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// metricsMiddleware records request counts and latency by route template
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.ObserveHTTP(r.Method, route, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requireSecret rejects requests without the shared secret in either the
// bearer token or the cron header
func (s *Server) requireSecret(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.hasSecret(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

// requireBearer rejects requests without the shared secret as a bearer token
func (s *Server) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.hasBearer(r) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

// hasSecret accepts "Authorization: Bearer <secret>" or the cron header.
// An empty secret disables authorization.
func (s *Server) hasSecret(r *http.Request) bool {
	return s.hasBearer(r) || s.secretMatches(r.Header.Get(cronSecretHeader))
}

func (s *Server) hasBearer(r *http.Request) bool {
	if s.config.CronSecret == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && s.secretMatches(token)
}

func (s *Server) secretMatches(candidate string) bool {
	secret := s.config.CronSecret
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}

// fromTrustedOrigin reports whether Origin contains a trusted origin
// fragment or Referer contains a trusted referer fragment. Both headers are
// client supplied.
func (s *Server) fromTrustedOrigin(r *http.Request) bool {
	return containsAny(r.Header.Get("Origin"), s.config.TrustedOrigins) ||
		containsAny(r.Header.Get("Referer"), s.config.TrustedReferers)
}

func containsAny(header string, fragments []string) bool {
	if header == "" {
		return false
	}
	for _, fragment := range fragments {
		if fragment != "" && strings.Contains(header, fragment) {
			return true
		}
	}
	return false
}

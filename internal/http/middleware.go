package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/takes-and-tastes/internal/cache"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	principalKey
)

// SessionLookup resolves a bearer token to the user it was issued to.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*cache.Principal, error)
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware writes one structured line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"request_id": getRequestID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	})
}

// AuthMiddleware requires a bearer token with a live session.
func AuthMiddleware(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			p, err := sessions.Lookup(r.Context(), token)
			if errors.Is(err, cache.ErrSessionNotFound) {
				respondError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			if err != nil {
				log.WithError(err).WithField("request_id", getRequestID(r.Context())).Error("session lookup failed")
				respondError(w, http.StatusInternalServerError, "Server error")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := getPrincipal(r.Context())
		if p == nil || !p.IsAdmin() {
			respondError(w, http.StatusUnauthorized, "Not authorized as an admin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getPrincipal(ctx context.Context) *cache.Principal {
	p, _ := ctx.Value(principalKey).(*cache.Principal)
	return p
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

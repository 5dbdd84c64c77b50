// Package middleware holds cross-cutting HTTP middleware: request IDs and
// Prometheus metrics.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDHeader is the header name for the request ID.
	RequestIDHeader = "X-Request-ID"

	// RequestIDContextKey is the context key for the request ID.
	RequestIDContextKey contextKey = "request_id"
)

// RequestID tags every request with a unique ID. An X-Request-ID header set
// upstream (load balancer, gateway) is kept; the ID is echoed in the
// response headers and stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		r = r.WithContext(context.WithValue(r.Context(), RequestIDContextKey, id))
		next.ServeHTTP(w, r)
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}

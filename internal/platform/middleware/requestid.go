// Package middleware holds the HTTP middleware chain: request metadata
// capture, logging, panic recovery, and authentication.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"brokerage/pkg/requestcontext"
)

// RequestIDHeader is honored when the caller supplies its own correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a correlation ID, reusing the caller's
// header value when present, and echoes it back in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

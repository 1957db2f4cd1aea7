package middleware

import (
	"net/http"

	"github.com/google/uuid"

	pkgctx "github.com/stockpilot/stockpilot/internal/pkg/context"
)

const requestIDHeader = "X-Request-Id"

// RequestID accepts an inbound X-Request-Id or mints one, puts it in the
// request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(pkgctx.WithRequestID(r.Context(), id)))
	})
}

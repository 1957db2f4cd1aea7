package response

import (
	"net/http"

	pkgctx "github.com/stockpilot/stockpilot/internal/pkg/context"
)

// RequestIDFromContext pulls the request id injected by the middleware.
func RequestIDFromContext(r *http.Request) string {
	if r == nil {
		return ""
	}
	return pkgctx.GetRequestID(r.Context())
}

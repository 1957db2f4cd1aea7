package middleware

import (
	"net/http"

	"github.com/stockpilot/stockpilot/internal/domain"
	"github.com/stockpilot/stockpilot/internal/transport/http/response"
)

// RequireAtLeast gates a route on a minimum role. It must sit behind the
// session guard; an absent user in context is a 401, not a 403.
func RequireAtLeast(min domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				response.WriteError(w, r, domain.ErrUnauthenticated())
				return
			}
			if domain.RoleRank(u.Role) < domain.RoleRank(string(min)) {
				response.WriteError(w, r, domain.ErrUnauthorized(string(min)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

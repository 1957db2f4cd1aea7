package middleware

import (
	"net/http"
	"strings"

	"github.com/stockpilot/stockpilot/internal/application/auth"
	"github.com/stockpilot/stockpilot/internal/domain"
	"github.com/stockpilot/stockpilot/internal/infrastructure/security"
	"github.com/stockpilot/stockpilot/internal/transport/http/response"
)

// SessionGuard authenticates requests from the session credential.
//
// Credential sources, in order:
//  1. the "authToken" cookie (browser clients)
//  2. the Authorization: Bearer header (API clients)
//
// The cookie wins when both are present. A valid signature is not
// enough on its own: the user must still exist in the directory, so a
// deleted account is locked out immediately even with a live token.
type SessionGuard struct {
	signer auth.SessionSigner
	users  auth.UserRepo
}

func NewSessionGuard(signer auth.SessionSigner, users auth.UserRepo) *SessionGuard {
	return &SessionGuard{signer: signer, users: users}
}

func (g *SessionGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			response.WriteError(w, r, domain.ErrUnauthenticated())
			return
		}

		claims, err := g.signer.VerifySession(token)
		if err != nil {
			response.WriteError(w, r, err)
			return
		}

		u, err := g.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			// The account behind the credential is gone; treat like any
			// other failed authentication.
			response.WriteError(w, r, domain.ErrUnauthenticated())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func extractToken(r *http.Request) string {
	if token, err := security.ReadSessionToken(r); err == nil && token != "" {
		return token
	}

	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package middleware

import (
	"context"

	"github.com/stockpilot/stockpilot/internal/domain"
)

type ctxKey string

const userKey ctxKey = "auth.user"

// WithUser stashes the authenticated user for downstream handlers.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}

func UserIDFromContext(ctx context.Context) string {
	u, ok := UserFromContext(ctx)
	if !ok {
		return ""
	}
	return u.ID
}

func RoleFromContext(ctx context.Context) string {
	u, ok := UserFromContext(ctx)
	if !ok {
		return ""
	}
	return u.Role
}

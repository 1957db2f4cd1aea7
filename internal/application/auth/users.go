package auth

import (
	"context"

	"github.com/stockpilot/stockpilot/internal/domain"
)

func (s *Service) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ListUsers returns the whole directory. Admin-only; the role gate lives
// in the transport layer.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

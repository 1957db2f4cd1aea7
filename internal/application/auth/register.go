package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/stockpilot/stockpilot/internal/domain"
)

// Register creates a new unverified staff user. Authentication happens
// later through the login-link flow; no password is involved.
func (s *Service) Register(ctx context.Context, email, name string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if name == "" {
		return domain.User{}, domain.ErrMissingField("name")
	}

	u := domain.User{
		ID:         uuid.NewString(),
		Email:      email,
		Name:       name,
		Role:       string(domain.RoleStaff),
		IsVerified: false,
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}

	if s.pub != nil {
		_ = s.pub.PublishUserRegistered(ctx, UserRegisteredEvent{
			UserID: created.ID,
			Email:  created.Email,
			Name:   created.Name,
		})
	}

	s.audit("user_registered", map[string]string{
		"user_id": created.ID,
	})
	return created, nil
}

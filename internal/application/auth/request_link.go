package auth

import (
	"context"
	"strings"

	"github.com/stockpilot/stockpilot/internal/domain"
)

// RequestLoginLink generates a single-use login token for a registered
// email, persists it on the user record (overwriting any prior token)
// and dispatches the verification link via the mail transport.
//
// Unknown emails fail with ErrNotRegistered and never create a user.
// Mail transport failure surfaces as ErrMailDispatchFailure; the token
// stays persisted so a retried request overwrites it safely.
func (s *Service) RequestLoginLink(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.ErrMissingField("email")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return domain.ErrNotRegistered()
		}
		return err
	}

	token, err := newOpaqueToken(32)
	if err != nil {
		return domain.ErrRandomFailed(err)
	}

	expiresAt := s.now().Add(s.linkTTL)
	if err := s.users.SetVerificationToken(ctx, u.ID, token, expiresAt); err != nil {
		return err
	}

	url := s.verifyBaseURL + token
	if err := s.mailer.SendLoginLink(ctx, u.Email, u.Name, url); err != nil {
		return domain.ErrMailDispatchFailure(err)
	}

	if s.pub != nil {
		// Best-effort: the link already went out, a lost event must not
		// fail the request.
		_ = s.pub.PublishLoginLinkIssued(ctx, LoginLinkIssuedEvent{
			UserID:    u.ID,
			Email:     u.Email,
			ExpiresAt: expiresAt,
		})
	}

	s.audit("login_link_issued", map[string]string{
		"user_id": u.ID,
	})
	return nil
}

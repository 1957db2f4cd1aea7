package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/stockpilot/stockpilot/internal/domain"
)

// VerifyResult carries the authenticated user and the freshly minted
// session credential. The transport layer is responsible for setting it
// as an HttpOnly SameSite=Lax cookie.
type VerifyResult struct {
	User         domain.User
	SessionToken string
	ExpiresIn    int64 // seconds
}

// VerifyLoginLink consumes a presented login token. Consumption is a
// single atomic update in the repository, so a replay or a concurrent
// verification of the same token fails with ErrInvalidToken; a matching
// but expired token fails with ErrTokenExpired and is never consumable.
func (s *Service) VerifyLoginLink(ctx context.Context, token string) (VerifyResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return VerifyResult{}, domain.ErrInvalidToken()
	}

	u, err := s.users.ConsumeVerificationToken(ctx, token, s.now())
	if err != nil {
		s.audit("login_link_rejected", map[string]string{
			"reason": errCode(err),
		})
		return VerifyResult{}, err
	}

	session, err := s.signer.SignSession(u, s.sessionTTL)
	if err != nil {
		return VerifyResult{}, domain.ErrTokenSignFailed(err)
	}

	if s.pub != nil {
		_ = s.pub.PublishUserVerified(ctx, UserVerifiedEvent{
			UserID: u.ID,
			Email:  u.Email,
		})
	}

	s.audit("user_verified", map[string]string{
		"user_id": u.ID,
	})

	return VerifyResult{
		User:         u,
		SessionToken: session,
		ExpiresIn:    int64(s.sessionTTL.Seconds()),
	}, nil
}

func errCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}

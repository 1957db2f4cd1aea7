package dto

import (
	"strings"

	"github.com/stockpilot/stockpilot/internal/domain"
)

// RegisterRequest creates a new unverified staff account.
type RegisterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	r.Name = strings.TrimSpace(r.Name)

	if r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if !looksLikeEmail(r.Email) {
		return domain.ErrInvalidField("email", "must be a valid email address")
	}
	if r.Name == "" {
		return domain.ErrMissingField("name")
	}
	if len(r.Name) > 120 {
		return domain.ErrInvalidField("name", "too long")
	}
	return nil
}

// LoginRequest asks for a single-use login link to be emailed.
type LoginRequest struct {
	Email string `json:"email"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))

	if r.Email == "" {
		return domain.ErrMissingField("email")
	}
	if !looksLikeEmail(r.Email) {
		return domain.ErrInvalidField("email", "must be a valid email address")
	}
	return nil
}

// looksLikeEmail is a sanity check, not RFC 5322. The mail transport is
// the real arbiter of deliverability.
func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	dom := s[at+1:]
	if !strings.Contains(dom, ".") || strings.HasPrefix(dom, ".") || strings.HasSuffix(dom, ".") {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n")
}

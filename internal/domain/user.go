package domain

import "time"

// User is the persisted identity record in the StockPilot directory.
// VerificationToken and TokenExpiresAt are either both set (a login link
// is outstanding) or both empty.
type User struct {
	ID                string
	Email             string
	Name              string
	Role              string
	IsVerified        bool
	VerificationToken string
	TokenExpiresAt    *time.Time
}

// HasOutstandingToken reports whether a login link is currently live for
// the user (ignoring expiry — an expired token still counts as outstanding
// until overwritten by the next issue).
func (u User) HasOutstandingToken() bool {
	return u.VerificationToken != "" && u.TokenExpiresAt != nil
}

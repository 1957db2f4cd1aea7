package auth

import (
	"context"
	"time"

	"github.com/stockpilot/stockpilot/internal/domain"
)

/*
UserRepo
--------
Persistence port for the user directory.
Only describes WHAT the auth flow needs, not HOW it's stored.
*/
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	Create(ctx context.Context, u domain.User) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)

	// SetVerificationToken overwrites any outstanding token for the user.
	// At most one live token per user at a time.
	SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// ConsumeVerificationToken atomically marks the matching user verified
	// and clears the token fields. Under concurrent calls with the same
	// token exactly one succeeds; the others get ErrInvalidToken.
	// An expired match returns ErrTokenExpired and leaves the row unchanged.
	ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (domain.User, error)
}

/*
SessionSigner
-------------
Issues and verifies session credentials (JWT).
Used by the service + session-guard middleware.
*/
type SessionClaims struct {
	UserID string
	Email  string
	Role   string
	Name   string
	Exp    time.Time
}

type SessionSigner interface {
	SignSession(u domain.User, ttl time.Duration) (string, error)
	VerifySession(token string) (SessionClaims, error)
}

/*
MailSender
----------
External mail transport. Dispatch is fire-and-await: a failure surfaces
to the caller as a generic error and is not retried automatically.
*/
type MailSender interface {
	SendLoginLink(ctx context.Context, toEmail, toName, url string) error
}

/*
EventPublisher
--------------
Publishes auth lifecycle events to RabbitMQ for downstream consumers.
Best-effort: publish failures never fail the request.
*/
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error
	PublishLoginLinkIssued(ctx context.Context, evt LoginLinkIssuedEvent) error
	PublishUserVerified(ctx context.Context, evt UserVerifiedEvent) error
}

/*
Event payloads
--------------
Strongly typed messages for MQ. The raw login token never leaves the
service through this path.
*/
type UserRegisteredEvent struct {
	UserID string
	Email  string
	Name   string
}

type LoginLinkIssuedEvent struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type UserVerifiedEvent struct {
	UserID string
	Email  string
}

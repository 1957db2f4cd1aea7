package memory

import (
	"context"

	"github.com/stockpilot/stockpilot/internal/application/auth"
)

// NoopPublisher is the dev fallback when RabbitMQ is unavailable.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) PublishUserRegistered(ctx context.Context, evt auth.UserRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PublishLoginLinkIssued(ctx context.Context, evt auth.LoginLinkIssuedEvent) error {
	return nil
}

func (NoopPublisher) PublishUserVerified(ctx context.Context, evt auth.UserVerifiedEvent) error {
	return nil
}

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"
)

type Service struct {
	users  UserRepo
	signer SessionSigner
	mailer MailSender
	pub    EventPublisher

	linkTTL    time.Duration
	sessionTTL time.Duration

	// verifyBaseURL must end in "token=" so the opaque token can be appended.
	verifyBaseURL string

	audit func(action string, fields map[string]string)
	now   func() time.Time
}

type Config struct {
	LinkTTL           time.Duration
	SessionTTL        time.Duration
	VerifyLinkBaseURL string // e.g. https://stockpilot.example.com/verify?token=
}

func NewService(
	users UserRepo,
	signer SessionSigner,
	mailer MailSender,
	pub EventPublisher,
	cfg Config,
) *Service {
	linkTTL := cfg.LinkTTL
	if linkTTL <= 0 {
		linkTTL = 30 * time.Minute
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &Service{
		users:  users,
		signer: signer,
		mailer: mailer,
		pub:    pub,

		linkTTL:       linkTTL,
		sessionTTL:    sessionTTL,
		verifyBaseURL: cfg.VerifyLinkBaseURL,

		audit: func(string, map[string]string) {},
		now:   time.Now,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// SessionTTL exposes the configured credential lifetime for cookie Max-Age.
func (s *Service) SessionTTL() time.Duration { return s.sessionTTL }

// newOpaqueToken returns a URL-safe opaque token.
func newOpaqueToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

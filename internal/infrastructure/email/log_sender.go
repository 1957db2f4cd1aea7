package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender is the dev fallback when SMTP is not configured: it logs the
// verification link instead of dispatching mail.
type LogSender struct {
	lg zerolog.Logger
}

func NewLogSender(lg zerolog.Logger) *LogSender {
	return &LogSender{
		lg: lg.With().Str("component", "log_sender").Logger(),
	}
}

func (s *LogSender) SendLoginLink(ctx context.Context, toEmail, toName, url string) error {
	s.lg.Info().
		Str("to", toEmail).
		Str("name", toName).
		Str("url", url).
		Msg("DEV send login link")
	return nil
}

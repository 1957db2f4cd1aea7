package audit

import (
	"github.com/rs/zerolog"
)

// Logger provides structured audit logging for auth business events.
// It backs the auth service's audit hook.
type Logger struct {
	log zerolog.Logger
}

// New creates a new audit logger
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Event records one business event. Email values are masked before they
// reach the log stream.
func (l *Logger) Event(action string, fields map[string]string) {
	evt := l.log.Info().Str("action", action)
	for k, v := range fields {
		if k == "email" {
			v = maskEmail(v)
		}
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	// Show first 2 chars and domain
	at := 0
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

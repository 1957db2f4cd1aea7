package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

type SMTPSender struct {
	lg zerolog.Logger

	host     string
	port     int
	user     string
	pass     string
	from     string
	insecure bool

	timeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool
}

func NewSMTPSender(cfg SMTPConfig, lg zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		lg:       lg.With().Str("component", "smtp_sender").Logger(),
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.Username,
		pass:     cfg.Password,
		from:     cfg.From,
		insecure: cfg.Insecure,
		timeout:  cfg.Timeout,
	}
}

func (s *SMTPSender) SendLoginLink(ctx context.Context, toEmail, toName, url string) error {
	subject := "Your StockPilot login link"
	text := fmt.Sprintf("Hi %s,\n\nSign in to StockPilot by opening this link:\n\n%s\n\nThe link expires in 30 minutes and can be used once.\n", toName, url)
	htmlBody := renderLoginLinkHTML(toName, url)
	return s.send(ctx, toEmail, subject, text, htmlBody)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(subject)

	// Text fallback + HTML alternative
	m.SetBodyString(mail.TypeTextPlain, textBody)
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	tlsPolicy := mail.TLSMandatory
	if s.insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.user != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(s.user), mail.WithPassword(s.pass))
	}

	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client init failed: %w", err)
	}

	s.lg.Info().Str("host", s.host).Int("port", s.port).Str("to", to).Str("subject", subject).Msg("attempting smtp send")
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("to", to).Msg("smtp send failed")
		return fmt.Errorf("smtp send: %w", err)
	}

	s.lg.Info().Str("to", to).Msg("smtp send ok")
	return nil
}

func renderLoginLinkHTML(name, link string) string {
	// minimal safe escaping
	escLink := html.EscapeString(link)
	escName := html.EscapeString(name)

	// very simple inline HTML (works in Gmail)
	return `<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>Sign in to StockPilot</h2>
    <p>Hi ` + escName + `, click the button below to sign in. The link expires in 30 minutes and can be used once.</p>

    <p>
      <a href="` + escLink + `" style="display:inline-block; padding:10px 14px; text-decoration:none; border-radius:6px; background:#111; color:#fff;">
        Sign in
      </a>
    </p>

    <p style="color:#555; font-size:12px;">
      If the button doesn't work, open this link:<br/>
      <a href="` + escLink + `">` + escLink + `</a>
    </p>

    <p style="color:#555; font-size:12px;">
      If you didn't request this email, you can safely ignore it.
    </p>
  </body>
</html>`
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stockpilot/stockpilot/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]string // email -> userID

	// injected errors (if set, method returns error)
	getByIDErr    error
	getByEmailErr error
	createErr     error
	setTokenErr   error

	setTokenCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]string{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
}

func (f *fakeUserRepo) get(id string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	return u, ok
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	id, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return f.byID[id], nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, exists := f.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.VerificationToken = token
	u.TokenExpiresAt = &expiresAt
	f.byID[userID] = u
	f.setTokenCalls++
	return nil
}

// ConsumeVerificationToken mirrors the postgres semantics: atomic under
// the mutex, expired tokens left in place.
func (f *fakeUserRepo) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, u := range f.byID {
		if u.VerificationToken != token || u.TokenExpiresAt == nil {
			continue
		}
		if now.After(*u.TokenExpiresAt) {
			return domain.User{}, domain.ErrTokenExpired()
		}
		u.IsVerified = true
		u.VerificationToken = ""
		u.TokenExpiresAt = nil
		f.byID[id] = u
		return u, nil
	}
	return domain.User{}, domain.ErrInvalidToken()
}

type fakeSigner struct {
	signErr error
}

func (s *fakeSigner) SignSession(u domain.User, ttl time.Duration) (string, error) {
	if s.signErr != nil {
		return "", s.signErr
	}
	return fmt.Sprintf("jwt(%s,%s)", u.ID, u.Role), nil
}

func (s *fakeSigner) VerifySession(token string) (SessionClaims, error) {
	return SessionClaims{}, errors.New("not implemented in fake")
}

type fakeMailer struct {
	mu sync.Mutex

	sendErr error

	sent []struct {
		to, name, url string
	}
}

func (m *fakeMailer) SendLoginLink(ctx context.Context, toEmail, toName, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, struct{ to, name, url string }{toEmail, toName, url})
	return nil
}

func (m *fakeMailer) lastURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].url
}

type fakePublisher struct {
	mu sync.Mutex

	registered []UserRegisteredEvent
	issued     []LoginLinkIssuedEvent
	verified   []UserVerifiedEvent
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, evt UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, evt)
	return nil
}

func (p *fakePublisher) PublishLoginLinkIssued(ctx context.Context, evt LoginLinkIssuedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.issued = append(p.issued, evt)
	return nil
}

func (p *fakePublisher) PublishUserVerified(ctx context.Context, evt UserVerifiedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verified = append(p.verified, evt)
	return nil
}

/*
Service factory for tests
*/

func newSvcForTest(t *testing.T) (*Service, *fakeUserRepo, *fakeSigner, *fakeMailer, *fakePublisher, *[]auditEntry) {
	t.Helper()

	users := newFakeUserRepo()
	signer := &fakeSigner{}
	mailer := &fakeMailer{}
	pub := &fakePublisher{}

	audits := &[]auditEntry{}
	cfg := Config{
		LinkTTL:           30 * time.Minute,
		SessionTTL:        7 * 24 * time.Hour,
		VerifyLinkBaseURL: "https://stockpilot.test/verify?token=",
	}

	svc := NewService(users, signer, mailer, pub, cfg).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	return svc, users, signer, mailer, pub, audits
}

/*
Small assertions
*/

func domainCode(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func tokenFromURL(t *testing.T, url string) string {
	t.Helper()
	i := strings.Index(url, "token=")
	if i < 0 {
		t.Fatalf("no token= in url %q", url)
	}
	return url[i+len("token="):]
}

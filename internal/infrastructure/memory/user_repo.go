package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stockpilot/stockpilot/internal/domain"
)

// UserRepo is an in-memory user directory for dev and tests. Consume
// semantics match the postgres implementation: atomic under the mutex,
// expired tokens left in place.
type UserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userID
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[normEmail(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return r.byID[id], nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = normEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if _, exists := r.byEmail[u.Email]; exists {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	if u.Role == "" {
		u.Role = string(domain.RoleStaff)
	}

	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *UserRepo) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.VerificationToken = token
	u.TokenExpiresAt = &expiresAt
	r.byID[userID] = u
	return nil
}

func (r *UserRepo) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrInvalidToken()
	}

	for id, u := range r.byID {
		if u.VerificationToken != token || u.TokenExpiresAt == nil {
			continue
		}
		if now.After(*u.TokenExpiresAt) {
			return domain.User{}, domain.ErrTokenExpired()
		}
		u.IsVerified = true
		u.VerificationToken = ""
		u.TokenExpiresAt = nil
		r.byID[id] = u
		return u, nil
	}
	return domain.User{}, domain.ErrInvalidToken()
}

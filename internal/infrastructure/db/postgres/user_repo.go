package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/stockpilot/stockpilot/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// ---------- helpers ----------

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id, email, name, role, is_verified, verification_token, verification_token_expires_at, created_at`

func scanUserRow(row *sql.Row) (userRow, error) {
	var ur userRow
	err := row.Scan(
		&ur.ID,
		&ur.Email,
		&ur.Name,
		&ur.Role,
		&ur.IsVerified,
		&ur.VerificationToken,
		&ur.TokenExpiresAt,
		&ur.CreatedAt,
	)
	return ur, err
}

func toDomainUser(ur userRow) domain.User {
	u := domain.User{
		ID:         ur.ID,
		Email:      ur.Email,
		Name:       ur.Name,
		Role:       ur.Role,
		IsVerified: ur.IsVerified,
	}
	if ur.VerificationToken.Valid {
		u.VerificationToken = ur.VerificationToken.String
	}
	if ur.TokenExpiresAt.Valid {
		t := ur.TokenExpiresAt.Time
		u.TokenExpiresAt = &t
	}
	return u
}

// ---------- auth.UserRepo ----------

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.User{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.User{}, domain.ErrMissingField("email")
	}
	if u.Name == "" {
		return domain.User{}, domain.ErrMissingField("name")
	}
	if u.Role == "" {
		u.Role = string(domain.RoleStaff)
	}

	const q = `
INSERT INTO users (id, email, name, role, is_verified)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + userColumns + `;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.Name, u.Role, u.IsVerified,
	))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return domain.User{}, domain.ErrEmailAlreadyExists()
		}
		return domain.User{}, domain.ErrDBUnavailable(err)
	}
	return toDomainUser(ur), nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var ur userRow
		if err := rows.Scan(
			&ur.ID,
			&ur.Email,
			&ur.Name,
			&ur.Role,
			&ur.IsVerified,
			&ur.VerificationToken,
			&ur.TokenExpiresAt,
			&ur.CreatedAt,
		); err != nil {
			return nil, domain.ErrDBUnavailable(err)
		}
		out = append(out, toDomainUser(ur))
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDBUnavailable(err)
	}
	return out, nil
}

// SetVerificationToken overwrites the outstanding token for the user.
// Last write wins under concurrent login requests for the same email;
// only the most recently issued link is meant to work.
func (r *UserRepo) SetVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if token == "" {
		return domain.ErrMissingField("token")
	}

	const q = `
UPDATE users
SET verification_token = $2,
    verification_token_expires_at = $3
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, userID, token, expiresAt)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

// ConsumeVerificationToken is a single UPDATE guarded by the token match
// and expiry, so two racing verifications of the same token produce
// exactly one winner; the loser sees zero rows and falls through to the
// invalid/expired distinction. An expired token is left on the row for
// inspection but can never match the consuming UPDATE again once
// overwritten or cleared.
func (r *UserRepo) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.User{}, domain.ErrInvalidToken()
	}

	const q = `
UPDATE users
SET is_verified = TRUE,
    verification_token = NULL,
    verification_token_expires_at = NULL
WHERE verification_token = $1
  AND verification_token_expires_at >= $2
RETURNING ` + userColumns + `;
`
	ur, err := scanUserRow(r.db.QueryRowContext(ctx, q, token, now))
	if err == nil {
		return toDomainUser(ur), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrDBUnavailable(err)
	}

	// No row consumed: distinguish an expired outstanding token from an
	// unknown/replayed one.
	const probe = `
SELECT verification_token_expires_at
FROM users
WHERE verification_token = $1
LIMIT 1;
`
	var expiresAt sql.NullTime
	perr := r.db.QueryRowContext(ctx, probe, token).Scan(&expiresAt)
	if perr == nil && expiresAt.Valid && now.After(expiresAt.Time) {
		return domain.User{}, domain.ErrTokenExpired()
	}
	if perr != nil && !errors.Is(perr, sql.ErrNoRows) {
		return domain.User{}, domain.ErrDBUnavailable(perr)
	}
	return domain.User{}, domain.ErrInvalidToken()
}

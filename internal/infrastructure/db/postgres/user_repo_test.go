package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/domain"
)

var userCols = []string{
	"id", "email", "name", "role", "is_verified",
	"verification_token", "verification_token_expires_at", "created_at",
}

func userRowFixture(token any, expires any) *sqlmock.Rows {
	return sqlmock.NewRows(userCols).AddRow(
		"u1", "a@x.com", "Ada", "staff", false,
		token, expires, time.Now(),
	)
}

func domCode(t *testing.T, err error) string {
	t.Helper()
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	t.Run("success_normalizes_email", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
			WithArgs("a@x.com").
			WillReturnRows(userRowFixture(nil, nil))

		u, err := repo.GetByEmail(context.Background(), "  A@X.com ")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Empty(t, u.VerificationToken)
		assert.Nil(t, u.TokenExpiresAt)
	})

	t.Run("not_found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE email =").
			WithArgs("missing@x.com").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(context.Background(), "missing@x.com")
		assert.Equal(t, "user_not_found", domCode(t, err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u1", "a@x.com", "Ada", "staff", false).
		WillReturnError(assertableErr("duplicate key value violates unique constraint"))

	_, err = repo.Create(context.Background(), domain.User{
		ID: "u1", Email: "a@x.com", Name: "Ada", Role: "staff",
	})
	assert.Equal(t, "email_already_exists", domCode(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetVerificationToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)
	exp := time.Now().Add(30 * time.Minute)

	t.Run("overwrites_existing", func(t *testing.T) {
		mock.ExpectExec("UPDATE users").
			WithArgs("u1", "tok1", exp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SetVerificationToken(context.Background(), "u1", "tok1", exp))
	})

	t.Run("unknown_user", func(t *testing.T) {
		mock.ExpectExec("UPDATE users").
			WithArgs("nope", "tok1", exp).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetVerificationToken(context.Background(), "nope", "tok1", exp)
		assert.Equal(t, "user_not_found", domCode(t, err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ConsumeVerificationToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)
	now := time.Now()

	t.Run("winner_row_returned", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).AddRow(
			"u1", "a@x.com", "Ada", "staff", true,
			nil, nil, time.Now(),
		)
		mock.ExpectQuery("UPDATE users").
			WithArgs("tok1", now).
			WillReturnRows(rows)

		u, err := repo.ConsumeVerificationToken(context.Background(), "tok1", now)
		require.NoError(t, err)
		assert.True(t, u.IsVerified)
	})

	t.Run("expired_probe", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs("tok1", now).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT verification_token_expires_at FROM users").
			WithArgs("tok1").
			WillReturnRows(sqlmock.NewRows([]string{"verification_token_expires_at"}).
				AddRow(now.Add(-time.Minute)))

		_, err := repo.ConsumeVerificationToken(context.Background(), "tok1", now)
		assert.Equal(t, "token_expired", domCode(t, err))
	})

	t.Run("unknown_token", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs("nope", now).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT verification_token_expires_at FROM users").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.ConsumeVerificationToken(context.Background(), "nope", now)
		assert.Equal(t, "invalid_token", domCode(t, err))
	})

	t.Run("empty_token_short_circuits", func(t *testing.T) {
		_, err := repo.ConsumeVerificationToken(context.Background(), "  ", now)
		assert.Equal(t, "invalid_token", domCode(t, err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

// assertableErr builds an error carrying a pg-style duplicate message.
type assertableErr string

func (e assertableErr) Error() string { return string(e) }

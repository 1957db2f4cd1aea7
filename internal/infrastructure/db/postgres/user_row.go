package postgres

import (
	"database/sql"
	"time"
)

type userRow struct {
	ID                string
	Email             string
	Name              string
	Role              string
	IsVerified        bool
	VerificationToken sql.NullString
	TokenExpiresAt    sql.NullTime
	CreatedAt         time.Time
}

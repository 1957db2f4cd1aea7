package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/domain"
)

func seedUser(t *testing.T, r *UserRepo) domain.User {
	t.Helper()
	u, err := r.Create(context.Background(), domain.User{
		ID: "u1", Email: "a@x.com", Name: "Ada", Role: "staff",
	})
	require.NoError(t, err)
	return u
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	seedUser(t, r)

	byEmail, err := r.GetByEmail(context.Background(), " A@X.com ")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := r.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = r.GetByEmail(context.Background(), "missing@x.com")
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "user_not_found", de.Code)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	seedUser(t, r)

	_, err := r.Create(context.Background(), domain.User{ID: "u2", Email: "A@x.com", Name: "Dup"})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "email_already_exists", de.Code)
}

func TestUserRepo_ConsumeToken_SingleUse(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	seedUser(t, r)
	ctx := context.Background()

	exp := time.Now().Add(30 * time.Minute)
	require.NoError(t, r.SetVerificationToken(ctx, "u1", "tok1", exp))

	u, err := r.ConsumeVerificationToken(ctx, "tok1", time.Now())
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Empty(t, u.VerificationToken)

	// replay
	_, err = r.ConsumeVerificationToken(ctx, "tok1", time.Now())
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "invalid_token", de.Code)
}

func TestUserRepo_ConsumeToken_Expired(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	seedUser(t, r)
	ctx := context.Background()

	exp := time.Now().Add(-time.Minute)
	require.NoError(t, r.SetVerificationToken(ctx, "u1", "tok1", exp))

	_, err := r.ConsumeVerificationToken(ctx, "tok1", time.Now())
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "token_expired", de.Code)

	// the expired token stays on the row and the user stays unverified
	u, err := r.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, u.IsVerified)
	assert.Equal(t, "tok1", u.VerificationToken)
}

func TestUserRepo_ConsumeToken_Concurrent_OneWinner(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	seedUser(t, r)
	ctx := context.Background()

	require.NoError(t, r.SetVerificationToken(ctx, "u1", "tok1", time.Now().Add(time.Hour)))

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.ConsumeVerificationToken(ctx, "tok1", time.Now())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestUserRepo_SetToken_Overwrites(t *testing.T) {
	t.Parallel()

	r := NewUserRepo()
	seedUser(t, r)
	ctx := context.Background()

	require.NoError(t, r.SetVerificationToken(ctx, "u1", "old", time.Now().Add(time.Hour)))
	require.NoError(t, r.SetVerificationToken(ctx, "u1", "new", time.Now().Add(time.Hour)))

	_, err := r.ConsumeVerificationToken(ctx, "old", time.Now())
	assert.Error(t, err)

	u, err := r.ConsumeVerificationToken(ctx, "new", time.Now())
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
}

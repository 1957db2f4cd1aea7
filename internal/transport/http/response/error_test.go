package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot/internal/domain"
)

func writeErr(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(rec, req, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestWriteError_KindMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ErrNotRegistered(), http.StatusBadRequest},
		{"auth", domain.ErrUnauthenticated(), http.StatusUnauthorized},
		{"forbidden", domain.ErrUnauthorized("admin"), http.StatusForbidden},
		{"not_found", domain.ErrUserNotFound(), http.StatusNotFound},
		{"conflict", domain.ErrEmailAlreadyExists(), http.StatusConflict},
		{"rate_limited", domain.ErrRateLimited("auth.login"), http.StatusTooManyRequests},
		{"infrastructure", domain.ErrDBUnavailable(errors.New("down")), http.StatusServiceUnavailable},
		{"internal", domain.ErrInternal(errors.New("boom")), http.StatusInternalServerError},
		{"plain_error", errors.New("anything"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := writeErr(t, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestWriteError_401CarriesAuthenticatedFalse(t *testing.T) {
	t.Parallel()

	_, body := writeErr(t, domain.ErrUnauthenticated())
	assert.Equal(t, false, body["authenticated"])

	// only 401 bodies carry the flag
	_, body = writeErr(t, domain.ErrUserNotFound())
	assert.NotContains(t, body, "authenticated")
}

func TestWriteError_PlainErrorDoesNotLeak(t *testing.T) {
	t.Parallel()

	rec, body := writeErr(t, errors.New("pq: connection refused host=10.0.0.5"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", body["message"])
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestWriteError_ExpiredTokenMessage(t *testing.T) {
	t.Parallel()

	_, body := writeErr(t, domain.ErrTokenExpired())
	assert.Equal(t, "Verification token has expired.", body["message"])
}

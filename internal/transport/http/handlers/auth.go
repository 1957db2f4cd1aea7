package handlers

import (
	"net/http"

	"github.com/stockpilot/stockpilot/internal/application/auth"
	"github.com/stockpilot/stockpilot/internal/domain"
	"github.com/stockpilot/stockpilot/internal/infrastructure/security"
	"github.com/stockpilot/stockpilot/internal/logger"
	"github.com/stockpilot/stockpilot/internal/transport/http/dto"
	"github.com/stockpilot/stockpilot/internal/transport/http/middleware"
	"github.com/stockpilot/stockpilot/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service

	// secureCookies is false only in dev, where the app runs on plain
	// http://localhost.
	secureCookies bool
}

func NewAuthHandler(svc *auth.Service, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies}
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), req.Email, req.Name)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.Created(w, dto.RegisterData{
		Success: true,
		Message: "Registration successful. You can now request a login link.",
		User:    dto.NewUserView(u),
	})
}

// Login handles POST /login. On success the token travels only through
// the email channel; the response body never contains it.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.RequestLoginLink(r.Context(), req.Email); err != nil {
		logger.WithCtx(r.Context()).Warn().Err(err).Msg("login link request failed")
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.LoginData{
		Success: true,
		Message: "Login link sent. Check your email.",
	})
}

// Verify handles GET /verify?token=...; a consumed token mints the
// session credential and sets it as an HttpOnly cookie.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	res, err := h.svc.VerifyLoginLink(r.Context(), token)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	security.SetSessionCookie(w, res.SessionToken, h.svc.SessionTTL(), h.secureCookies)

	response.OK(w, dto.VerifyData{
		Success: true,
		Message: "Email verified. You are now logged in.",
		Token:   res.SessionToken,
		User:    dto.NewUserView(res.User),
	})
}

// Logout handles POST /logout. It clears the cookie unconditionally so
// a stale or invalid credential still ends up logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if uid := middleware.UserIDFromContext(r.Context()); uid != "" {
		h.svc.Logout(r.Context(), uid)
	}

	security.ClearSessionCookie(w, h.secureCookies)

	response.OK(w, dto.LogoutData{
		Success: true,
		Message: "Logged out.",
	})
}

// User handles GET /user behind the session guard.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrUnauthenticated())
		return
	}

	response.OK(w, dto.UserData{
		Authenticated: true,
		User:          dto.NewUserView(u),
	})
}

// AdminListUsers handles GET /admin/users behind the admin gate.
func (h *AuthHandler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.NewUsersData(users))
}

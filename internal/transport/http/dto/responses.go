package dto

import "github.com/stockpilot/stockpilot/internal/domain"

// UserView is the public projection of a user record. Token fields never
// leave the server.
type UserView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

// RegisterData is the 201 body for POST /register.
type RegisterData struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

// LoginData is the 200 body for POST /login. The token itself travels
// only by email.
type LoginData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyData is the 200 body for GET /verify. The session credential is
// also set as a cookie; it is echoed here for non-browser clients.
type VerifyData struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}

// UserData is the 200 body for GET /user.
type UserData struct {
	Authenticated bool     `json:"authenticated"`
	User          UserView `json:"user"`
}

// LogoutData is the 200 body for POST /logout.
type LogoutData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UsersData is the 200 body for GET /admin/users.
type UsersData struct {
	Users []UserView `json:"users"`
	Count int        `json:"count"`
}

func NewUsersData(users []domain.User) UsersData {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, NewUserView(u))
	}
	return UsersData{Users: views, Count: len(views)}
}

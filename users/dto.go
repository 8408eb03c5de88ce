package users

import "time"

// RegisterRequest represents the registration request payload.
// The `validate` tags are checked by go-playground/validator; `example` tags feed the API docs.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"Alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
}

// TokenResponse is returned after a successful registration.
type TokenResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// UserResponse is the public view of an account. The password hash is never part of it.
type UserResponse struct {
	ID     string    `json:"id" example:"3f0c8a52-7f0e-4a53-9d35-1c0f3b1e2a4d"`
	Name   string    `json:"name" example:"Alice"`
	Email  string    `json:"email" example:"alice@example.com"`
	Avatar string    `json:"avatar" example:"//www.gravatar.com/avatar/c160f8cc69a4f0bf2b0362752353d060?s=200&r=pg&d=mm"`
	Date   time.Time `json:"date" example:"2026-01-15T10:30:00Z"`
}

func toResponse(u *User) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Date:   u.Date,
	}
}

// Package authapi provides login, registration and the /me profile endpoint.
package authapi

import (
	"context"

	"github.com/gsdta/schoolapi/internal/app/store/users"
)

// UserStore is the account persistence the handlers need.
type UserStore interface {
	ByEmail(ctx context.Context, email string) (*users.User, error)
	ByUID(ctx context.Context, uid string) (*users.User, error)
	Create(ctx context.Context, u *users.User) error
}

// TokenIssuer signs bearer tokens after a successful login.
type TokenIssuer interface {
	Issue(uid, email string, emailVerified bool) (string, error)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *users.User `json:"user"`
}

type meResponse struct {
	User *users.User `json:"user"`
}

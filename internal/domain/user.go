package domain

import "context"

// User-related domain errors.
var (
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "Email already registered"}
)

// User is a storefront account. Password hashes never leave the user
// store; this type carries only the public profile.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

// AuthResult is the structured outcome of a login or register attempt.
type AuthResult struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UserService provides account registration and sign-in.
// Implementations attempt the real auth backend first and fall back to
// the local mock user store.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*User, error)
}

package auth

import (
	"stayhub/internal/domain/shared/fault"
	"stayhub/internal/domain/user"
)

var (
	ErrUnauthenticated = fault.New(fault.ErrUnauthenticated, "unauthenticated", "auth: authentication required")
	ErrForbidden       = fault.New(fault.ErrForbidden, "forbidden", "auth: insufficient permissions")
	ErrTokenRequired   = fault.New(fault.ErrUnauthenticated, "unauthenticated", "auth: token required")
	ErrInvalidToken    = fault.New(fault.ErrUnauthenticated, "invalid_token", "auth: invalid or expired token")
)

// Actor is the user on whose behalf an operation runs. Operations receive it
// explicitly; a nil *Actor means an anonymous caller.
type Actor struct {
	ID   user.ID
	Role user.Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == user.RoleAdmin
}

// Require fails with ErrUnauthenticated for anonymous callers.
func Require(a *Actor) error {
	if a == nil || a.ID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// RequireAdmin fails unless the caller is an authenticated admin.
func RequireAdmin(a *Actor) error {
	if err := Require(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

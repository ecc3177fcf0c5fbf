package domain

import (
	"context"
	"errors"
	"time"
)

// User is the authenticated principal attached to a request. Registration
// and credential handling live in an external identity service; only enough
// survives here to attribute audit entries and gate operator endpoints.
type User struct {
	ID        string
	Email     string
	Role      Role
	CreatedAt time.Time
	Active    bool
}

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin has full access, including table lifecycle operations.
	RoleAdmin Role = "admin"

	// RoleOperator can manage tables but not accounts.
	RoleOperator Role = "operator"

	// RolePlayer can act only on their own wallet and sessions.
	RolePlayer Role = "player"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RolePlayer:   true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanManageTables checks if the role can create and close tables.
func (r Role) CanManageTables() bool {
	return r == RoleAdmin || r == RoleOperator
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type userContextKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok
}

package auth

import (
	"context"
	"strings"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleStaff
}

// ParseRole accepts only the two known roles, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Identity is the verdict of the gate: who is calling and with which role.
type Identity struct {
	UserID uint
	Email  string
	Role   Role
}

func (i Identity) IsStaff() bool {
	return i.Role == RoleStaff
}

func (i Identity) Owns(userID uint) bool {
	return i.UserID != 0 && i.UserID == userID
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller identity or ErrUnauthenticated.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

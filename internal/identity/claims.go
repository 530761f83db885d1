// Package identity verifies visitor and staff tokens and exposes the
// current user to handlers. Roles are carried explicitly in the token.
package identity

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the authorization level granted by a token.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleVisitor, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Allows reports whether r meets the required role. Admin satisfies staff.
func (r Role) Allows(required Role) bool {
	switch required {
	case RoleAdmin:
		return r == RoleAdmin
	case RoleStaff:
		return r == RoleAdmin || r == RoleStaff
	case RoleVisitor:
		return r.Valid()
	}
	return false
}

// Claims is the JWT payload issued to site users.
type Claims struct {
	jwt.RegisteredClaims
	Role        Role   `json:"role"`
	DisplayName string `json:"name,omitempty"`
	PhotoURL    string `json:"picture,omitempty"`
}

type contextKey string

const claimsKey contextKey = "identityClaims"

// WithClaims stores verified claims on the context.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns verified claims if present.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

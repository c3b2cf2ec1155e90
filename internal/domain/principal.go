package domain

import "context"

// Role is the caller's role as asserted by the identity provider.
type Role string

const (
	// RoleUser is a regular account.
	RoleUser Role = "user"
	// RoleAdmin may read analytics and uploads without spending credits.
	RoleAdmin Role = "admin"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type principalKey struct{}

// ContextWithPrincipal stores the authenticated principal in the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal and whether one was set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}

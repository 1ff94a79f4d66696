// Package context carries the caller identity and request ids through a
// request. Document services read the pharmacy scope from here.
package context

import (
	"context"
	"slices"
)

// UserContext is the caller taken from a verified access token.
type UserContext struct {
	UserID string
	Email  string
	Roles  []string

	// PharmacyID scopes every document the caller reads or writes; empty
	// means the caller sees all pharmacies
	PharmacyID string

	IsAdmin bool
}

// HasAnyRole reports whether the caller holds one of roles. Admins hold all.
func (u *UserContext) HasAnyRole(roles ...string) bool {
	if u.IsAdmin {
		return true
	}
	for _, r := range roles {
		if slices.Contains(u.Roles, r) {
			return true
		}
	}
	return false
}

type userKey struct{}

func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser returns the caller or nil for anonymous requests.
func GetUser(ctx context.Context) *UserContext {
	u, _ := ctx.Value(userKey{}).(*UserContext)
	return u
}

// GetPharmacyID returns the caller's pharmacy scope, empty when unscoped.
func GetPharmacyID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.PharmacyID
	}
	return ""
}

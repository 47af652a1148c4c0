// Package auth implements bearer-token verification and the per-request
// authorization guard shared by every API route.
package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
)

// Role names used across the API.
const (
	RoleSuperAdmin    = "super_admin"
	RoleAdmin         = "admin"
	RoleAdminReadonly = "admin_readonly"
	RoleTeacher       = "teacher"
	RoleParent        = "parent"
)

// Profile is the caller's stored profile, loaded once per request.
type Profile struct {
	UID       string
	Email     string
	Name      string
	FirstName string
	LastName  string
	Roles     []string
	Status    string
}

// DisplayName resolves the name shown in audit entries and authored records.
// All routes use this rather than picking fields ad hoc.
func (p *Profile) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.FirstName != "" || p.LastName != "":
		return strings.TrimSpace(p.FirstName + " " + p.LastName)
	case p.Email != "":
		return p.Email
	default:
		return "User"
	}
}

// HasRole reports whether the profile carries the exact role.
func (p *Profile) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// Context is the authenticated caller: verified token claims plus profile.
type Context struct {
	Token   *Claims
	Profile *Profile
}

// Options selects the guard preconditions for a route.
type Options struct {
	// Roles requires at least one of these roles. super_admin satisfies a
	// requirement for admin; admin_readonly satisfies admin for reads.
	Roles []string
	// RequireActive rejects callers whose profile status is not "active".
	// Routes opt out explicitly; the default everywhere is true.
	RequireActive bool
	// RequireWrite blocks callers whose only admin privilege is
	// admin_readonly.
	RequireWrite bool
}

// ProfileStore loads caller profiles. Implemented by store/users.
type ProfileStore interface {
	ProfileByUID(ctx context.Context, uid string) (*Profile, error)
}

// TokenVerifier verifies bearer tokens. Implemented by TokenService.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Guard enforces authentication and role preconditions for API routes.
type Guard struct {
	tokens   TokenVerifier
	profiles ProfileStore
	logger   *zap.Logger
}

// NewGuard creates a Guard.
func NewGuard(tokens TokenVerifier, profiles ProfileStore, logger *zap.Logger) *Guard {
	return &Guard{tokens: tokens, profiles: profiles, logger: logger}
}

// Require verifies the Authorization header, loads the caller's profile and
// enforces the given preconditions. Failures are *Error values ready for the
// response envelope. The only side effect is the profile read, so calling it
// twice with the same token yields the same result.
func (g *Guard) Require(ctx context.Context, authorization string, opts Options) (*Context, error) {
	if authorization == "" {
		return nil, errMissingToken()
	}
	raw, ok := strings.CutPrefix(authorization, "Bearer ")
	if !ok || raw == "" {
		return nil, errInvalidToken("Invalid authorization format")
	}

	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	profile, err := g.profiles.ProfileByUID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, NewError(http.StatusNotFound, "auth/profile-not-found", "User profile not found")
		}
		g.logger.Error("profile load failed", zap.String("uid", claims.UID), zap.Error(err))
		return nil, NewError(http.StatusInternalServerError, "internal/error", "Failed to load user profile")
	}

	if opts.RequireActive && profile.Status != "active" {
		return nil, errForbidden("User status is not active")
	}

	if len(opts.Roles) > 0 && !satisfiesRoles(profile.Roles, opts.Roles) {
		return nil, errForbidden("Insufficient privileges")
	}

	if opts.RequireWrite && isReadOnly(profile.Roles) {
		return nil, errForbidden("Read-only access - write operations not permitted")
	}

	return &Context{Token: claims, Profile: profile}, nil
}

// satisfiesRoles applies the role hierarchy: super_admin implicitly holds
// admin, and admin_readonly may enter admin areas (writes are blocked
// separately via RequireWrite).
func satisfiesRoles(have, want []string) bool {
	for _, required := range want {
		if slices.Contains(have, required) {
			return true
		}
		if required == RoleAdmin &&
			(slices.Contains(have, RoleSuperAdmin) || slices.Contains(have, RoleAdminReadonly)) {
			return true
		}
	}
	return false
}

func isReadOnly(roles []string) bool {
	return slices.Contains(roles, RoleAdminReadonly) &&
		!slices.Contains(roles, RoleAdmin) &&
		!slices.Contains(roles, RoleSuperAdmin)
}

// Package rbac implements role/permission resolution and route gating for
// SPEC_FULL §4.4.
package rbac

import (
	"context"
	"strings"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// PermissionSource resolves the permission codes granted to a user,
// aggregating the primary role plus any secondary role assignments
// (§4.4). Implemented by the user/role repository.
type PermissionSource interface {
	UserPermissions(ctx context.Context, userID domain.ID) ([]string, error)
}

// PermissionCache is an optional write-through cache in front of
// PermissionSource, implemented by internal/rbac's redis-backed RedisCache.
type PermissionCache interface {
	Get(ctx context.Context, userID domain.ID) ([]string, bool)
	Set(ctx context.Context, userID domain.ID, perms []string)
}

// Resolver implements user_has_permission / resolve_permissions_for_claims
// (§4.4).
type Resolver struct {
	source PermissionSource
	cache  PermissionCache
}

func NewResolver(source PermissionSource, cache PermissionCache) *Resolver {
	return &Resolver{source: source, cache: cache}
}

// ResolvePermissions returns the permission codes granted to a user,
// consulting the cache first and falling back to the database.
func (r *Resolver) ResolvePermissions(ctx context.Context, userID domain.ID) ([]string, error) {
	if r.cache != nil {
		if perms, ok := r.cache.Get(ctx, userID); ok {
			return perms, nil
		}
	}
	perms, err := r.source.UserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(ctx, userID, perms)
	}
	return perms, nil
}

// HasPermission implements the §4.4 wildcard matching rule: a code is
// granted if present literally, or if "*" is granted, or if
// "resource.*" is granted for the code's resource segment.
func HasPermission(granted []string, code string) bool {
	for _, g := range granted {
		if g == "*" || g == code {
			return true
		}
		if strings.HasSuffix(g, ".*") {
			resource := strings.TrimSuffix(g, "*")
			if strings.HasPrefix(code, resource) {
				return true
			}
		}
	}
	return false
}

// UserHasPermission checks a permission code against the claims' cached
// permission set, falling back to a live resolve when the cached set
// denies it (§4.4: "a missed lookup falls back to a live DB check to
// tolerate newly granted permissions").
func (r *Resolver) UserHasPermission(ctx context.Context, claims domain.UserClaims, code string) bool {
	if claims.IsSuperAdmin() {
		return true
	}
	if HasPermission(claims.Permissions, code) {
		return true
	}
	live, err := r.source.UserPermissions(ctx, claims.Subject)
	return err == nil && HasPermission(live, code)
}

// RequirePermission wraps UserHasPermission, returning Forbidden when
// denied.
func (r *Resolver) RequirePermission(ctx context.Context, claims domain.UserClaims, code string) error {
	if !r.UserHasPermission(ctx, claims, code) {
		return apierrors.Forbidden("missing required permission: " + code)
	}
	return nil
}

// RequireRoleLevel enforces a minimum role level (lower is more
// privileged), used for commands like approve/assign that are gated
// beyond a plain permission code (§4.4).
func RequireRoleLevel(claims domain.UserClaims, required domain.RoleLevel) error {
	if !claims.AtLeast(required) {
		return apierrors.Forbidden("requires a higher role level")
	}
	return nil
}

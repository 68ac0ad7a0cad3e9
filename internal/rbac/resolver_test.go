package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assetledger/backend/internal/domain"
)

type fakePermissionSource struct {
	perms map[domain.ID][]string
}

func (f *fakePermissionSource) UserPermissions(ctx context.Context, userID domain.ID) ([]string, error) {
	return f.perms[userID], nil
}

func TestHasPermission_WildcardMonotonicity(t *testing.T) {
	granted := []string{"assets.*"}
	assert.True(t, HasPermission(granted, "assets.read"))
	assert.True(t, HasPermission(granted, "assets.write"))
	assert.False(t, HasPermission(granted, "loans.read"))
}

func TestHasPermission_GlobalWildcard(t *testing.T) {
	assert.True(t, HasPermission([]string{"*"}, "anything.goes"))
}

func TestHasPermission_LiteralMatch(t *testing.T) {
	granted := []string{"loans.approve"}
	assert.True(t, HasPermission(granted, "loans.approve"))
	assert.False(t, HasPermission(granted, "loans.reject"))
}

func TestResolver_ResolvesFromSourceWithoutCache(t *testing.T) {
	userID := domain.NewID()
	source := &fakePermissionSource{perms: map[domain.ID][]string{userID: {"assets.read"}}}
	resolver := NewResolver(source, nil)

	perms, err := resolver.ResolvePermissions(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"assets.read"}, perms)
}

func TestResolver_SuperAdminBypassesPermissionCheck(t *testing.T) {
	resolver := NewResolver(&fakePermissionSource{}, nil)
	claims := domain.UserClaims{RoleLevel: domain.RoleLevelSuperAdmin}
	assert.True(t, resolver.UserHasPermission(context.Background(), claims, "anything.at.all"))
}

func TestResolver_LiveFallbackOnCacheMiss(t *testing.T) {
	userID := domain.NewID()
	source := &fakePermissionSource{perms: map[domain.ID][]string{userID: {"work_orders.*"}}}
	resolver := NewResolver(source, nil)
	claims := domain.UserClaims{Subject: userID, RoleLevel: domain.RoleLevelStaff}

	assert.True(t, resolver.UserHasPermission(context.Background(), claims, "work_orders.cancel"))
}

func TestMatrix_MostSpecificPrefixWins(t *testing.T) {
	m := &Matrix{Routes: []Route{
		{Method: "POST", PathPrefix: "/api/work-orders", Permission: "work_orders.write"},
		{Method: "POST", PathPrefix: "/api/work-orders/", Permission: "work_orders.cancel", RequiredLevel: domain.RoleLevelManager},
	}}

	route, ok := m.Match("POST", "/api/work-orders/123/cancel")
	require.True(t, ok)
	assert.Equal(t, "work_orders.cancel", route.Permission)
}

func TestRequireRoleLevel(t *testing.T) {
	claims := domain.UserClaims{RoleLevel: domain.RoleLevelSupervisor}
	assert.NoError(t, RequireRoleLevel(claims, domain.RoleLevelSupervisor))
	assert.Error(t, RequireRoleLevel(claims, domain.RoleLevelManager))
}

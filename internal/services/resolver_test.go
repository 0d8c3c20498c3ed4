package services

import (
	"testing"

	"bezs/internal/models"
	apperr "bezs/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DenyByDefault(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	// 角色有授权，但用户在组织内没有任何角色
	_, err := env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.NotNil(t, set.MenuItems)
	assert.NotNil(t, set.Actions)
}

func TestResolve_RoundTrip(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")

	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapActionPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.action.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-a"}, menuSlugs(set))
	assert.Equal(t, []string{w.action.ActionName}, actionNames(set))

	require.NoError(t, env.mapping.UnmapActionPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.action.ID))
	set, err = env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-a"}, menuSlugs(set))
	assert.Empty(t, set.Actions)

	require.NoError(t, env.mapping.UnmapUserFromOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID))
	set, err = env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestResolve_GrantIsMonotonic(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	before, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)

	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuB.ID)
	require.NoError(t, err)

	after, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Subset(t, menuSlugs(after), menuSlugs(before))
	assert.Equal(t, []string{"menu-a", "menu-b"}, menuSlugs(after))
}

func TestResolve_CrossOrganizationIsolation(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	orgB := env.mustOrg(t, "org-b")

	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, orgB.ID, w.app.ID)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestResolve_AppScoping(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	otherApp := env.mustApp(t, "other")

	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, otherApp.ID)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestResolve_UnionOfRolesIsDeduplicated(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	second := env.mustRole(t, "reviewer")

	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, second.ID)
	require.NoError(t, err)

	// 两个角色都授予 menu-a，只有第二个角色授予 menu-b 和操作
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, second.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, second.ID, w.app.ID, w.menuB.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapActionPermission(env.ctx, env.admin, second.ID, w.app.ID, w.action.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-a", "menu-b"}, menuSlugs(set))
	assert.Equal(t, []string{w.action.ActionName}, actionNames(set))
}

func TestResolve_InsertionOrder(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)

	// 先授予 menu-b，结果按授权记录顺序而非菜单ID
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuB.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-b", "menu-a"}, menuSlugs(set))
}

func TestResolve_StrictAppEnablement(t *testing.T) {
	env := newTestEnv(t, DeleteCascade, ResolverOptions{StrictAppEnablement: true})
	w := env.newWorld(t, "a")

	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty(), "app not enabled for the organization")

	_, err = env.mapping.AddAppToOrganization(env.ctx, env.admin, w.app.ID, w.org.ID)
	require.NoError(t, err)

	set, err = env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-a"}, menuSlugs(set))
}

func TestResolve_NonStrictIgnoresAppEnablement(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")

	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-a"}, menuSlugs(set))
}

func TestResolve_Authorization(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	other := env.mustUser(t, "other", models.PlatformRoleUser)

	_, err := env.resolver.Resolve(env.ctx, Anonymous(), w.user.ID, w.org.ID, w.app.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = env.resolver.Resolve(env.ctx, NewCaller(other), w.user.ID, w.org.ID, w.app.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = env.resolver.Resolve(env.ctx, env.admin, w.user.ID, w.org.ID, w.app.ID)
	assert.NoError(t, err)

	_, err = env.resolver.Resolve(env.ctx, env.admin, w.user.ID, 0, w.app.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResolve_SuperuserGetsNoImplicitGrants(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")

	set, err := env.resolver.ResolveForCaller(env.ctx, env.admin, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.True(t, env.guard.IsSuperuser(env.admin))
	assert.Equal(t, int64(0), env.count(t, &models.RBAC{}))
}

func TestResolve_ReflectsDeletedMenuItem(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuB.ID)
	require.NoError(t, err)

	require.NoError(t, env.apps.DeleteMenuItem(env.ctx, env.admin, w.app.ID, w.menuA.ID))

	set, err := env.resolver.Resolve(env.ctx, w.caller, w.user.ID, w.org.ID, w.app.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"menu-b"}, menuSlugs(set))
}

func TestHasAction(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapActionPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.action.ID)
	require.NoError(t, err)

	ok, err := env.resolver.HasAction(env.ctx, w.caller, w.org.ID, w.app.ID, w.action.ActionName)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.resolver.HasAction(env.ctx, w.caller, w.org.ID, w.app.ID, "delete-everything")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.resolver.HasAction(env.ctx, Anonymous(), w.org.ID, w.app.ID, w.action.ActionName)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestPermissionSet_Lookups(t *testing.T) {
	set := &PermissionSet{
		MenuItems: []models.AppMenuItem{{Slug: "dashboard"}},
		Actions:   []models.AppAction{{ActionName: "export"}},
	}

	assert.False(t, set.IsEmpty())
	assert.True(t, set.HasMenuItem("dashboard"))
	assert.False(t, set.HasMenuItem("settings"))
	assert.True(t, set.HasAction("export"))
	assert.False(t, set.HasAction("import"))
	assert.True(t, emptyPermissionSet().IsEmpty())
}

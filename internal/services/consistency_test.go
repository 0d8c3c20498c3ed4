package services

import (
	"testing"

	"bezs/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orphanWorld 绕过服务层直接删除父记录，留下孤立的关联行
func orphanWorld(t *testing.T, env *testEnv) *world {
	t.Helper()
	w := env.newWorld(t, "a")
	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)
	_, err = env.mapping.MapMenuPermission(env.ctx, env.admin, w.role.ID, w.app.ID, w.menuA.ID)
	require.NoError(t, err)
	_, err = env.mapping.AddAppToOrganization(env.ctx, env.admin, w.app.ID, w.org.ID)
	require.NoError(t, err)

	require.NoError(t, env.db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, env.db.Delete(&models.User{}, w.user.ID).Error)
	require.NoError(t, env.db.Delete(&models.AppMenuItem{}, w.menuA.ID).Error)
	return w
}

func TestConsistencyService_SweepReportsOrphans(t *testing.T) {
	env := newDefaultEnv(t)
	orphanWorld(t, env)
	svc := NewConsistencyService(env.db, false)

	assert.Nil(t, svc.LastReport())

	report, err := svc.Sweep(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Orphans["rbac"])
	assert.Equal(t, int64(1), report.Orphans["menu_permissions"])
	assert.Equal(t, int64(0), report.Orphans["action_permissions"])
	assert.Equal(t, int64(0), report.Orphans["app_organizations"])
	assert.Equal(t, int64(2), report.Total())
	assert.Empty(t, report.Deleted)

	// 只统计不删除
	assert.Equal(t, int64(1), env.count(t, &models.RBAC{}))
	assert.Equal(t, report, svc.LastReport())
}

func TestConsistencyService_SweepDeletesOrphans(t *testing.T) {
	env := newDefaultEnv(t)
	orphanWorld(t, env)
	svc := NewConsistencyService(env.db, true)

	report, err := svc.Sweep(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Deleted["rbac"])
	assert.Equal(t, int64(1), report.Deleted["menu_permissions"])
	assert.Equal(t, int64(0), env.count(t, &models.RBAC{}))
	assert.Equal(t, int64(0), env.count(t, &models.MenuPermission{}))
	// 父记录齐全的关联不受影响
	assert.Equal(t, int64(1), env.count(t, &models.AppOrganization{}))

	report, err = svc.Sweep(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Total())
}

func TestConsistencyService_CleanStore(t *testing.T) {
	env := newDefaultEnv(t)
	w := env.newWorld(t, "a")
	_, err := env.mapping.MapUserToOrgRole(env.ctx, env.admin, w.org.ID, w.user.ID, w.role.ID)
	require.NoError(t, err)

	report, err := NewConsistencyService(env.db, true).Sweep(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Total())
	assert.Equal(t, int64(1), env.count(t, &models.RBAC{}))
}

func TestConsistencyService_StartStop(t *testing.T) {
	env := newDefaultEnv(t)
	svc := NewConsistencyService(env.db, false)

	assert.Error(t, svc.Start("not a cron"))

	require.NoError(t, svc.Start("0 */30 * * * *"))
	assert.Error(t, svc.Start("0 */30 * * * *"), "already running")
	svc.Stop()
	// 重复停止无副作用
	svc.Stop()
}

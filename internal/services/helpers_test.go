package services

import (
	"bezs/internal/database"
	"bezs/internal/models"
	"bezs/pkg/queue"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingPublisher 记录推送的审计事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*queue.EventMessage
	err    error
}

func (p *recordingPublisher) Enqueue(_ context.Context, message *queue.EventMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, message)
	return nil
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Action)
	}
	return out
}

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	guard     *AccessGuard
	publisher *recordingPublisher
	mapping   *MappingService
	resolver  *PermissionResolver
	orgs      *OrganizationService
	roles     *RoleService
	apps      *AppService
	users     *UserService
	admin     Caller
}

// newTestDB 内存 sqlite，单连接保证所有语句看到同一个库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), "silent")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.MigrateDB(db))
	return db
}

func newTestEnv(t *testing.T, policy DeletePolicy, opts ResolverOptions) *testEnv {
	t.Helper()
	db := newTestDB(t)
	guard := NewAccessGuard()
	publisher := &recordingPublisher{}
	audit := NewAuditRecorder(publisher)

	env := &testEnv{
		ctx:       context.Background(),
		db:        db,
		guard:     guard,
		publisher: publisher,
		mapping:   NewMappingService(db, guard, audit),
		resolver:  NewPermissionResolver(db, guard, opts),
		orgs:      NewOrganizationService(db, guard, audit, policy),
		roles:     NewRoleService(db, guard, audit, policy),
		apps:      NewAppService(db, guard, audit, policy),
		users:     NewUserService(db, guard, audit, policy),
	}
	env.admin = NewCaller(env.mustUser(t, "root", models.PlatformRoleAdmin))
	return env
}

func newDefaultEnv(t *testing.T) *testEnv {
	return newTestEnv(t, DeleteCascade, ResolverOptions{})
}

// mustUser 直接写库创建用户，跳过 bcrypt 以加快测试
func (e *testEnv) mustUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Name:         username,
		Role:         role,
		Status:       models.UserStatusActive,
		PasswordHash: "-",
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) mustOrg(t *testing.T, slug string) *models.Organization {
	t.Helper()
	org, err := e.orgs.Create(e.ctx, e.admin, OrganizationInput{Name: "Org " + slug, Slug: slug})
	require.NoError(t, err)
	return org
}

func (e *testEnv) mustRole(t *testing.T, name string) *models.Role {
	t.Helper()
	role, err := e.roles.Create(e.ctx, e.admin, RoleInput{Name: name})
	require.NoError(t, err)
	return role
}

func (e *testEnv) mustApp(t *testing.T, slug string) *models.App {
	t.Helper()
	app, err := e.apps.Create(e.ctx, e.admin, AppInput{Name: "App " + slug, Slug: slug, Type: models.AppTypeCustom})
	require.NoError(t, err)
	return app
}

func (e *testEnv) mustMenuItem(t *testing.T, appID uint, slug string) *models.AppMenuItem {
	t.Helper()
	item, err := e.apps.CreateMenuItem(e.ctx, e.admin, appID, MenuItemInput{Name: slug, Slug: slug})
	require.NoError(t, err)
	return item
}

func (e *testEnv) mustAction(t *testing.T, appID uint, name string) *models.AppAction {
	t.Helper()
	action, err := e.apps.CreateAction(e.ctx, e.admin, appID, ActionInput{ActionName: name, ActionType: models.ActionTypeButton})
	require.NoError(t, err)
	return action
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func (e *testEnv) auditCount(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

// world 一套常用的测试数据：组织、角色、应用及其菜单项和操作
type world struct {
	org    *models.Organization
	role   *models.Role
	app    *models.App
	menuA  *models.AppMenuItem
	menuB  *models.AppMenuItem
	action *models.AppAction
	user   *models.User
	caller Caller
}

func (e *testEnv) newWorld(t *testing.T, suffix string) *world {
	t.Helper()
	app := e.mustApp(t, "app-"+suffix)
	user := e.mustUser(t, "user"+suffix, models.PlatformRoleUser)
	return &world{
		org:    e.mustOrg(t, "org-"+suffix),
		role:   e.mustRole(t, "role-"+suffix),
		app:    app,
		menuA:  e.mustMenuItem(t, app.ID, "menu-a"),
		menuB:  e.mustMenuItem(t, app.ID, "menu-b"),
		action: e.mustAction(t, app.ID, fmt.Sprintf("export-%s", suffix)),
		user:   user,
		caller: NewCaller(user),
	}
}

var errPublishDown = errors.New("redis unavailable")

func menuSlugs(set *PermissionSet) []string {
	out := make([]string, 0, len(set.MenuItems))
	for _, item := range set.MenuItems {
		out = append(out, item.Slug)
	}
	return out
}

func actionNames(set *PermissionSet) []string {
	out := make([]string, 0, len(set.Actions))
	for _, action := range set.Actions {
		out = append(out, action.ActionName)
	}
	return out
}

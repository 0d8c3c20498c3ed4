package services

import (
	"bezs/internal/models"
	"bezs/pkg/metrics"
	"context"
	"time"

	"gorm.io/gorm"
)

// PermissionSet 用户在某组织某应用下的有效权限
// 按授权记录的创建顺序去重，排序交给展示层
type PermissionSet struct {
	MenuItems []models.AppMenuItem `json:"menu_items"`
	Actions   []models.AppAction   `json:"actions"`
}

func emptyPermissionSet() *PermissionSet {
	return &PermissionSet{
		MenuItems: []models.AppMenuItem{},
		Actions:   []models.AppAction{},
	}
}

// IsEmpty 无任何授权
func (p *PermissionSet) IsEmpty() bool {
	return len(p.MenuItems) == 0 && len(p.Actions) == 0
}

// HasMenuItem 是否可见指定菜单
func (p *PermissionSet) HasMenuItem(slug string) bool {
	for _, item := range p.MenuItems {
		if item.Slug == slug {
			return true
		}
	}
	return false
}

// HasAction 是否可执行指定操作
func (p *PermissionSet) HasAction(actionName string) bool {
	for _, action := range p.Actions {
		if action.ActionName == actionName {
			return true
		}
	}
	return false
}

// ResolverOptions 解析选项
type ResolverOptions struct {
	// StrictAppEnablement 为 true 时，应用未启用到该组织则授权一律不生效
	StrictAppEnablement bool
}

// PermissionResolver 权限解析，每次调用都直接读存储，不缓存
type PermissionResolver struct {
	db     *gorm.DB
	guard  *AccessGuard
	strict bool
}

func NewPermissionResolver(db *gorm.DB, guard *AccessGuard, opts ResolverOptions) *PermissionResolver {
	return &PermissionResolver{
		db:     db,
		guard:  guard,
		strict: opts.StrictAppEnablement,
	}
}

// Resolve 计算 userID 在 orgID 下对 appID 的有效权限；解析他人需要平台管理员
func (r *PermissionResolver) Resolve(ctx context.Context, caller Caller, userID, orgID, appID uint) (*PermissionSet, error) {
	if err := r.guard.RequireSelfOrAdmin(caller, userID); err != nil {
		return nil, err
	}
	if err := requireIDs(idOf("user_id", userID), idOf("organization_id", orgID), idOf("app_id", appID)); err != nil {
		return nil, err
	}
	return r.resolve(ctx, userID, orgID, appID)
}

// ResolveForCaller 解析调用方自己的权限
func (r *PermissionResolver) ResolveForCaller(ctx context.Context, caller Caller, orgID, appID uint) (*PermissionSet, error) {
	return r.Resolve(ctx, caller, caller.UserID, orgID, appID)
}

// HasAction 调用方在组织内是否可以执行某应用的操作
func (r *PermissionResolver) HasAction(ctx context.Context, caller Caller, orgID, appID uint, actionName string) (bool, error) {
	set, err := r.ResolveForCaller(ctx, caller, orgID, appID)
	if err != nil {
		return false, err
	}
	return set.HasAction(actionName), nil
}

func (r *PermissionResolver) resolve(ctx context.Context, userID, orgID, appID uint) (*PermissionSet, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	}()

	db := r.db.WithContext(ctx)

	// 1. 用户在该组织持有的角色
	var roleIDs []uint
	err := db.Model(&models.RBAC{}).
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		Distinct("role_id").
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, wrapStoreError(err, "查询用户角色失败")
	}
	if len(roleIDs) == 0 {
		return emptyPermissionSet(), nil
	}

	if r.strict {
		enabled, err := exists(db, &models.AppOrganization{}, map[string]interface{}{
			"app_id":          appID,
			"organization_id": orgID,
		})
		if err != nil {
			return nil, wrapStoreError(err, "查询应用启用状态失败")
		}
		if !enabled {
			return emptyPermissionSet(), nil
		}
	}

	set := emptyPermissionSet()

	// 2. 菜单：各角色授权的并集
	var menuItems []models.AppMenuItem
	err = db.Model(&models.AppMenuItem{}).
		Joins("JOIN menu_permissions ON menu_permissions.app_menu_item_id = app_menu_items.id").
		Where("menu_permissions.role_id IN ? AND menu_permissions.app_id = ? AND app_menu_items.app_id = ?", roleIDs, appID, appID).
		Order("menu_permissions.id").
		Find(&menuItems).Error
	if err != nil {
		return nil, wrapStoreError(err, "查询菜单权限失败")
	}
	seenMenu := make(map[uint]struct{}, len(menuItems))
	for _, item := range menuItems {
		if _, ok := seenMenu[item.ID]; ok {
			continue
		}
		seenMenu[item.ID] = struct{}{}
		set.MenuItems = append(set.MenuItems, item)
	}

	// 3. 操作：同上
	var actions []models.AppAction
	err = db.Model(&models.AppAction{}).
		Joins("JOIN action_permissions ON action_permissions.app_action_id = app_actions.id").
		Where("action_permissions.role_id IN ? AND action_permissions.app_id = ? AND app_actions.app_id = ?", roleIDs, appID, appID).
		Order("action_permissions.id").
		Find(&actions).Error
	if err != nil {
		return nil, wrapStoreError(err, "查询操作权限失败")
	}
	seenAction := make(map[uint]struct{}, len(actions))
	for _, action := range actions {
		if _, ok := seenAction[action.ID]; ok {
			continue
		}
		seenAction[action.ID] = struct{}{}
		set.Actions = append(set.Actions, action)
	}

	return set, nil
}

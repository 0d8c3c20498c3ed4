package services

import (
	"bezs/internal/models"
	"context"

	"gorm.io/gorm"
)

// MappingService 关联表的映射/解除映射，全部要求平台管理员
type MappingService struct {
	mutator
}

func NewMappingService(db *gorm.DB, guard *AccessGuard, audit *AuditRecorder) *MappingService {
	return &MappingService{
		mutator: mutator{db: db, guard: guard, audit: audit},
	}
}

// ========== 用户-组织-角色 ==========

// MapUserToOrgRole 在组织内为用户授予角色
func (s *MappingService) MapUserToOrgRole(ctx context.Context, caller Caller, orgID, userID, roleID uint) (*models.RBAC, error) {
	row := &models.RBAC{OrganizationID: orgID, UserID: userID, RoleID: roleID}

	err := s.mutate(ctx, caller, "rbac.map", "rbac", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("organization_id", orgID), idOf("user_id", userID), idOf("role_id", roleID)); err != nil {
			return nil, err
		}
		if err := requireParents(tx,
			parentRef{"组织不存在", &models.Organization{}, map[string]interface{}{"id": orgID}},
			parentRef{"用户不存在", &models.User{}, map[string]interface{}{"id": userID}},
			parentRef{"角色不存在", &models.Role{}, map[string]interface{}{"id": roleID}},
		); err != nil {
			return nil, err
		}
		// 是否重复由唯一索引裁决
		if err := tx.Create(row).Error; err != nil {
			return nil, insertError(err, "该用户在此组织中已拥有该角色", "用户、组织或角色不存在")
		}
		return rbacDetail(orgID, userID, roleID), nil
	})

	observeResult("map_user_to_org_role", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// UnmapUserFromOrgRole 撤销用户在组织内的角色
func (s *MappingService) UnmapUserFromOrgRole(ctx context.Context, caller Caller, orgID, userID, roleID uint) error {
	err := s.mutate(ctx, caller, "rbac.unmap", "rbac", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("organization_id", orgID), idOf("user_id", userID), idOf("role_id", roleID)); err != nil {
			return nil, err
		}
		err := removeRow(tx, &models.RBAC{}, map[string]interface{}{
			"organization_id": orgID,
			"user_id":         userID,
			"role_id":         roleID,
		}, "用户角色关联不存在")
		return rbacDetail(orgID, userID, roleID), err
	})

	observeResult("unmap_user_from_org_role", err)
	return err
}

// ========== 角色-应用-菜单 ==========

// MapMenuPermission 授予角色在应用下的菜单可见权限
func (s *MappingService) MapMenuPermission(ctx context.Context, caller Caller, roleID, appID, menuItemID uint) (*models.MenuPermission, error) {
	row := &models.MenuPermission{RoleID: roleID, AppID: appID, AppMenuItemID: menuItemID}

	err := s.mutate(ctx, caller, "menu_permission.map", "menu_permission", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("role_id", roleID), idOf("app_id", appID), idOf("app_menu_item_id", menuItemID)); err != nil {
			return nil, err
		}
		if err := requireParents(tx,
			parentRef{"角色不存在", &models.Role{}, map[string]interface{}{"id": roleID}},
			parentRef{"应用不存在", &models.App{}, map[string]interface{}{"id": appID}},
			parentRef{"菜单项不存在或不属于该应用", &models.AppMenuItem{}, map[string]interface{}{"id": menuItemID, "app_id": appID}},
		); err != nil {
			return nil, err
		}
		if err := tx.Create(row).Error; err != nil {
			return nil, insertError(err, "该角色已拥有此菜单权限", "角色、应用或菜单项不存在")
		}
		return menuDetail(roleID, appID, menuItemID), nil
	})

	observeResult("map_menu_permission", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// UnmapMenuPermission 撤销菜单权限
func (s *MappingService) UnmapMenuPermission(ctx context.Context, caller Caller, roleID, appID, menuItemID uint) error {
	err := s.mutate(ctx, caller, "menu_permission.unmap", "menu_permission", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("role_id", roleID), idOf("app_id", appID), idOf("app_menu_item_id", menuItemID)); err != nil {
			return nil, err
		}
		err := removeRow(tx, &models.MenuPermission{}, map[string]interface{}{
			"role_id":          roleID,
			"app_id":           appID,
			"app_menu_item_id": menuItemID,
		}, "菜单权限不存在")
		return menuDetail(roleID, appID, menuItemID), err
	})

	observeResult("unmap_menu_permission", err)
	return err
}

// ========== 角色-应用-操作 ==========

// MapActionPermission 授予角色在应用下的操作权限
func (s *MappingService) MapActionPermission(ctx context.Context, caller Caller, roleID, appID, actionID uint) (*models.ActionPermission, error) {
	row := &models.ActionPermission{RoleID: roleID, AppID: appID, AppActionID: actionID}

	err := s.mutate(ctx, caller, "action_permission.map", "action_permission", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("role_id", roleID), idOf("app_id", appID), idOf("app_action_id", actionID)); err != nil {
			return nil, err
		}
		if err := requireParents(tx,
			parentRef{"角色不存在", &models.Role{}, map[string]interface{}{"id": roleID}},
			parentRef{"应用不存在", &models.App{}, map[string]interface{}{"id": appID}},
			parentRef{"操作不存在或不属于该应用", &models.AppAction{}, map[string]interface{}{"id": actionID, "app_id": appID}},
		); err != nil {
			return nil, err
		}
		if err := tx.Create(row).Error; err != nil {
			return nil, insertError(err, "该角色已拥有此操作权限", "角色、应用或操作不存在")
		}
		return actionDetail(roleID, appID, actionID), nil
	})

	observeResult("map_action_permission", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// UnmapActionPermission 撤销操作权限
func (s *MappingService) UnmapActionPermission(ctx context.Context, caller Caller, roleID, appID, actionID uint) error {
	err := s.mutate(ctx, caller, "action_permission.unmap", "action_permission", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("role_id", roleID), idOf("app_id", appID), idOf("app_action_id", actionID)); err != nil {
			return nil, err
		}
		err := removeRow(tx, &models.ActionPermission{}, map[string]interface{}{
			"role_id":       roleID,
			"app_id":        appID,
			"app_action_id": actionID,
		}, "操作权限不存在")
		return actionDetail(roleID, appID, actionID), err
	})

	observeResult("unmap_action_permission", err)
	return err
}

// ========== 应用-组织 ==========

// AddAppToOrganization 为组织启用应用
func (s *MappingService) AddAppToOrganization(ctx context.Context, caller Caller, appID, orgID uint) (*models.AppOrganization, error) {
	row := &models.AppOrganization{AppID: appID, OrganizationID: orgID}

	err := s.mutate(ctx, caller, "app_organization.add", "app_organization", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("app_id", appID), idOf("organization_id", orgID)); err != nil {
			return nil, err
		}
		if err := requireParents(tx,
			parentRef{"应用不存在", &models.App{}, map[string]interface{}{"id": appID}},
			parentRef{"组织不存在", &models.Organization{}, map[string]interface{}{"id": orgID}},
		); err != nil {
			return nil, err
		}
		if err := tx.Create(row).Error; err != nil {
			return nil, insertError(err, "该组织已启用此应用", "应用或组织不存在")
		}
		return appOrgDetail(appID, orgID), nil
	})

	observeResult("add_app_to_organization", err)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// RemoveAppFromOrganization 为组织停用应用
func (s *MappingService) RemoveAppFromOrganization(ctx context.Context, caller Caller, appID, orgID uint) error {
	err := s.mutate(ctx, caller, "app_organization.remove", "app_organization", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("app_id", appID), idOf("organization_id", orgID)); err != nil {
			return nil, err
		}
		err := removeRow(tx, &models.AppOrganization{}, map[string]interface{}{
			"app_id":          appID,
			"organization_id": orgID,
		}, "该组织未启用此应用")
		return appOrgDetail(appID, orgID), err
	})

	observeResult("remove_app_from_organization", err)
	return err
}

// ========== 查询方法 ==========

// ListOrgMembers 组织内的用户角色关联
func (s *MappingService) ListOrgMembers(ctx context.Context, caller Caller, orgID uint) ([]models.RBAC, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := requireIDs(idOf("organization_id", orgID)); err != nil {
		return nil, err
	}

	var rows []models.RBAC
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Preload("User").
		Preload("Role").
		Order("id").
		Find(&rows).Error
	return rows, wrapStoreError(err, "查询组织成员失败")
}

// ListUserMemberships 用户在各组织的角色，本人或平台管理员可查
func (s *MappingService) ListUserMemberships(ctx context.Context, caller Caller, userID uint) ([]models.RBAC, error) {
	if err := s.guard.RequireSelfOrAdmin(caller, userID); err != nil {
		return nil, err
	}

	var rows []models.RBAC
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Role").
		Order("id").
		Find(&rows).Error
	return rows, wrapStoreError(err, "查询用户角色失败")
}

// ListRoleMenuPermissions 角色的菜单授权，appID 为0时返回全部应用
func (s *MappingService) ListRoleMenuPermissions(ctx context.Context, caller Caller, roleID, appID uint) ([]models.MenuPermission, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := requireIDs(idOf("role_id", roleID)); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("role_id = ?", roleID)
	if appID != 0 {
		query = query.Where("app_id = ?", appID)
	}

	var rows []models.MenuPermission
	err := query.Preload("AppMenuItem").Order("id").Find(&rows).Error
	return rows, wrapStoreError(err, "查询菜单权限失败")
}

// ListRoleActionPermissions 角色的操作授权，appID 为0时返回全部应用
func (s *MappingService) ListRoleActionPermissions(ctx context.Context, caller Caller, roleID, appID uint) ([]models.ActionPermission, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := requireIDs(idOf("role_id", roleID)); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Where("role_id = ?", roleID)
	if appID != 0 {
		query = query.Where("app_id = ?", appID)
	}

	var rows []models.ActionPermission
	err := query.Preload("AppAction").Order("id").Find(&rows).Error
	return rows, wrapStoreError(err, "查询操作权限失败")
}

// ListOrganizationApps 组织已启用的应用
func (s *MappingService) ListOrganizationApps(ctx context.Context, caller Caller, orgID uint) ([]models.AppOrganization, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if err := requireIDs(idOf("organization_id", orgID)); err != nil {
		return nil, err
	}

	var rows []models.AppOrganization
	err := s.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Preload("App").
		Order("id").
		Find(&rows).Error
	return rows, wrapStoreError(err, "查询组织应用失败")
}

// ========== 审计明细 ==========

func rbacDetail(orgID, userID, roleID uint) map[string]interface{} {
	return map[string]interface{}{"organization_id": orgID, "user_id": userID, "role_id": roleID}
}

func menuDetail(roleID, appID, menuItemID uint) map[string]interface{} {
	return map[string]interface{}{"role_id": roleID, "app_id": appID, "app_menu_item_id": menuItemID}
}

func actionDetail(roleID, appID, actionID uint) map[string]interface{} {
	return map[string]interface{}{"role_id": roleID, "app_id": appID, "app_action_id": actionID}
}

func appOrgDetail(appID, orgID uint) map[string]interface{} {
	return map[string]interface{}{"app_id": appID, "organization_id": orgID}
}

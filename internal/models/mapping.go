package models

// 关联表只允许通过映射操作显式创建和删除，唯一索引是并发写入的最终裁决

// AppOrganization 应用-组织启用关系
type AppOrganization struct {
	JoinModel
	AppID          uint `gorm:"not null;uniqueIndex:idx_app_organization" json:"app_id"`
	OrganizationID uint `gorm:"not null;uniqueIndex:idx_app_organization;index" json:"organization_id"`

	App *App `gorm:"foreignKey:AppID" json:"app,omitempty"`
}

// TableName 指定表名
func (AppOrganization) TableName() string {
	return "app_organizations"
}

// RBAC 用户在组织内的角色
// 同一 (组织, 用户, 角色) 至多一行；同一组织内可以持有多个角色
type RBAC struct {
	JoinModel
	OrganizationID uint `gorm:"not null;uniqueIndex:idx_rbac_org_user_role" json:"organization_id"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_rbac_org_user_role;index" json:"user_id"`
	RoleID         uint `gorm:"not null;uniqueIndex:idx_rbac_org_user_role;index" json:"role_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role *Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// TableName 指定表名
func (RBAC) TableName() string {
	return "rbac"
}

// MenuPermission 角色在某应用下可见的菜单项
type MenuPermission struct {
	JoinModel
	RoleID        uint `gorm:"not null;uniqueIndex:idx_menu_perm_role_app_item" json:"role_id"`
	AppID         uint `gorm:"not null;uniqueIndex:idx_menu_perm_role_app_item" json:"app_id"`
	AppMenuItemID uint `gorm:"not null;uniqueIndex:idx_menu_perm_role_app_item;index" json:"app_menu_item_id"`

	AppMenuItem *AppMenuItem `gorm:"foreignKey:AppMenuItemID" json:"app_menu_item,omitempty"`
}

// TableName 指定表名
func (MenuPermission) TableName() string {
	return "menu_permissions"
}

// ActionPermission 角色在某应用下可执行的操作
type ActionPermission struct {
	JoinModel
	RoleID      uint `gorm:"not null;uniqueIndex:idx_action_perm_role_app_action" json:"role_id"`
	AppID       uint `gorm:"not null;uniqueIndex:idx_action_perm_role_app_action" json:"app_id"`
	AppActionID uint `gorm:"not null;uniqueIndex:idx_action_perm_role_app_action;index" json:"app_action_id"`

	AppAction *AppAction `gorm:"foreignKey:AppActionID" json:"app_action,omitempty"`
}

// TableName 指定表名
func (ActionPermission) TableName() string {
	return "action_permissions"
}

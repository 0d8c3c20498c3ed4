package models

// Role 角色模型，不绑定组织，通过 RBAC 关联到 (用户, 组织)
type Role struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName 表名
func (r *Role) TableName() string {
	return "roles"
}

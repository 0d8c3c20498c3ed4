package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 权限变更审计记录
type AuditLog struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	EventID   string         `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	ActorID   uint           `gorm:"index" json:"actor_id"`
	Action    string         `gorm:"size:50;not null;index" json:"action"` // 如 rbac.map、role.delete
	Entity    string         `gorm:"size:50;not null" json:"entity"`
	Detail    datatypes.JSON `gorm:"type:json" json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

// TableName 表名
func (AuditLog) TableName() string {
	return "audit_logs"
}

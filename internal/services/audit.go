package services

import (
	"bezs/internal/models"
	"bezs/pkg/logger"
	"bezs/pkg/pagination"
	"bezs/pkg/queue"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventPublisher 审计事件下游，生产环境为 Redis 队列
type EventPublisher interface {
	Enqueue(ctx context.Context, message *queue.EventMessage) error
}

// AuditRecorder 审计记录：与变更同事务写入 audit_logs，提交后推送到队列
type AuditRecorder struct {
	publisher EventPublisher
}

// NewAuditRecorder publisher 可为 nil，此时只写数据库
func NewAuditRecorder(publisher EventPublisher) *AuditRecorder {
	return &AuditRecorder{publisher: publisher}
}

// AuditEvent 一次变更的审计内容
type AuditEvent struct {
	log    *models.AuditLog
	detail map[string]interface{}
}

// Write 在事务内写入审计记录
func (a *AuditRecorder) Write(tx *gorm.DB, caller Caller, action, entity string, detail map[string]interface{}) (*AuditEvent, error) {
	raw, err := json.Marshal(detail)
	if err != nil {
		return nil, err
	}

	entry := &models.AuditLog{
		EventID: uuid.New().String(),
		ActorID: caller.UserID,
		Action:  action,
		Entity:  entity,
		Detail:  datatypes.JSON(raw),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return &AuditEvent{log: entry, detail: detail}, nil
}

// Publish 事务提交后推送，失败只记日志，不影响已提交的变更
func (a *AuditRecorder) Publish(ctx context.Context, ev *AuditEvent) {
	if a == nil || a.publisher == nil || ev == nil {
		return
	}

	msg := &queue.EventMessage{
		EventID: ev.log.EventID,
		Action:  ev.log.Action,
		Entity:  ev.log.Entity,
		ActorID: ev.log.ActorID,
		Detail:  ev.detail,
		Created: time.Now().Unix(),
	}
	if err := a.publisher.Enqueue(ctx, msg); err != nil {
		logger.WithModule("audit").Warnf("publish audit event %s (%s) failed: %v", msg.EventID, msg.Action, err)
	}
}

// ListAuditLogs 分页查询审计记录（平台管理员）
func ListAuditLogs(ctx context.Context, db *gorm.DB, guard *AccessGuard, caller Caller, action string, page, pageSize int) ([]*models.AuditLog, int64, error) {
	if err := guard.RequireAdmin(caller); err != nil {
		return nil, 0, err
	}

	var logs []*models.AuditLog
	var total int64

	query := db.WithContext(ctx).Model(&models.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询审计记录失败")
	}

	if err := query.Order("id DESC").Scopes(pagination.Paginate(page, pageSize)).Find(&logs).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询审计记录失败")
	}
	return logs, total, nil
}

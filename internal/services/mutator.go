package services

import (
	apperr "bezs/pkg/errors"
	"bezs/pkg/metrics"
	"context"

	"gorm.io/gorm"
)

// mutator 管理员写操作的公共流程：守卫 -> 事务(变更 + 审计) -> 提交后推送
type mutator struct {
	db    *gorm.DB
	guard *AccessGuard
	audit *AuditRecorder
}

func (m *mutator) mutate(ctx context.Context, caller Caller, action, entity string, fn func(tx *gorm.DB) (map[string]interface{}, error)) error {
	// 守卫必须先于任何存储访问
	if err := m.guard.RequireAdmin(caller); err != nil {
		return err
	}

	var ev *AuditEvent
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		detail, err := fn(tx)
		if err != nil {
			return err
		}
		ev, err = m.audit.Write(tx, caller, action, entity, detail)
		if err != nil {
			return wrapStoreError(err, "写入审计记录失败")
		}
		return nil
	})
	if err != nil {
		return wrapStoreError(err, "事务提交失败")
	}

	m.audit.Publish(ctx, ev)
	return nil
}

// parentRef 写关联前需要存在的父记录
type parentRef struct {
	missingMsg string
	model      interface{}
	conds      map[string]interface{}
}

func requireParents(tx *gorm.DB, refs ...parentRef) error {
	for _, ref := range refs {
		found, err := exists(tx, ref.model, ref.conds)
		if err != nil {
			return wrapStoreError(err, "查询失败")
		}
		if !found {
			return apperr.NotFound(ref.missingMsg)
		}
	}
	return nil
}

// removeRow 按复合键删除关联行，0 行受影响即 NotFound
func removeRow(tx *gorm.DB, model interface{}, conds map[string]interface{}, notFoundMsg string) error {
	res := tx.Where(conds).Delete(model)
	if res.Error != nil {
		return deleteError(res.Error, "仍被其他记录引用，无法删除")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

// observeResult 记录操作结果到指标
func observeResult(operation string, err error) {
	result := "ok"
	if err != nil {
		result = string(apperr.KindOf(err))
	}
	metrics.ObserveMapping(operation, result)
}

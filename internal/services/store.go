package services

import (
	"errors"
	"strings"

	apperr "bezs/pkg/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isDuplicate 唯一约束冲突
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation 外键约束冲突
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// wrapStoreError 已分类的业务错误原样返回，其余视为基础设施故障
func wrapStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(message, err)
}

// lookupError 查询单条记录的错误翻译
func lookupError(err error, notFoundMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFoundMsg)
	}
	return wrapStoreError(err, "查询失败")
}

// insertError 插入错误翻译：唯一冲突 -> Conflict，外键冲突（并发删除了父记录）-> NotFound
func insertError(err error, conflictMsg, missingMsg string) error {
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return apperr.Conflict(conflictMsg)
	case isForeignKeyViolation(err):
		return apperr.NotFound(missingMsg)
	default:
		return wrapStoreError(err, "写入失败")
	}
}

// deleteError 删除错误翻译：外键冲突 -> Referential
func deleteError(err error, referencedMsg string) error {
	switch {
	case err == nil:
		return nil
	case isForeignKeyViolation(err):
		return apperr.Referential(referencedMsg)
	default:
		return wrapStoreError(err, "删除失败")
	}
}

// exists 按条件判断记录是否存在
func exists(tx *gorm.DB, model interface{}, conds map[string]interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(conds).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

package services

import (
	"bezs/pkg/config"
	apperr "bezs/pkg/errors"
	"fmt"

	"gorm.io/gorm"
)

// dependent 引用父记录的依赖表
type dependent struct {
	label  string      // 用于错误信息
	model  interface{} // 依赖表模型
	column string      // 指向父记录的列
}

// DeletePolicy 删除被引用父记录时的策略，对所有实体一致生效
type DeletePolicy string

const (
	DeleteCascade  DeletePolicy = config.DeletePolicyCascade
	DeleteRestrict DeletePolicy = config.DeletePolicyRestrict
)

// deleteWithDependents 事务内删除父记录：
// cascade 先删依赖再删父记录；restrict 存在依赖时返回 ReferentialError，不做任何删除
func deleteWithDependents(tx *gorm.DB, policy DeletePolicy, parent interface{}, id uint, notFoundMsg string, deps []dependent) error {
	found, err := exists(tx, parent, map[string]interface{}{"id": id})
	if err != nil {
		return wrapStoreError(err, "查询失败")
	}
	if !found {
		return apperr.NotFound(notFoundMsg)
	}

	for _, dep := range deps {
		if policy == DeleteRestrict {
			var count int64
			if err := tx.Model(dep.model).Where(dep.column+" = ?", id).Count(&count).Error; err != nil {
				return wrapStoreError(err, "查询依赖失败")
			}
			if count > 0 {
				return apperr.Referential(fmt.Sprintf("仍被 %d 条%s引用，无法删除", count, dep.label))
			}
			continue
		}

		if err := tx.Where(dep.column+" = ?", id).Delete(dep.model).Error; err != nil {
			return wrapStoreError(err, "删除"+dep.label+"失败")
		}
	}

	res := tx.Delete(parent, id)
	if res.Error != nil {
		return deleteError(res.Error, "仍被其他记录引用，无法删除")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

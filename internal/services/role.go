package services

import (
	"bezs/internal/models"
	"bezs/pkg/pagination"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// RoleInput 创建/更新角色参数
type RoleInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=255"`
}

type RoleService struct {
	mutator
	policy DeletePolicy
}

func NewRoleService(db *gorm.DB, guard *AccessGuard, audit *AuditRecorder, policy DeletePolicy) *RoleService {
	return &RoleService{
		mutator: mutator{db: db, guard: guard, audit: audit},
		policy:  policy,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (s *RoleService) Create(ctx context.Context, caller Caller, input RoleInput) (*models.Role, error) {
	input.Name = strings.TrimSpace(input.Name)
	role := &models.Role{Name: input.Name, Description: input.Description}

	err := s.mutate(ctx, caller, "role.create", "role", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.Create(role).Error; err != nil {
			return nil, insertError(err, "角色名称已存在", "角色不存在")
		}
		return map[string]interface{}{"role_id": role.ID, "name": role.Name}, nil
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

// Update 更新角色
func (s *RoleService) Update(ctx context.Context, caller Caller, id uint, input RoleInput) (*models.Role, error) {
	input.Name = strings.TrimSpace(input.Name)
	var role models.Role

	err := s.mutate(ctx, caller, "role.update", "role", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.First(&role, id).Error; err != nil {
			return nil, lookupError(err, "角色不存在")
		}
		role.Name = input.Name
		role.Description = input.Description
		if err := tx.Save(&role).Error; err != nil {
			return nil, insertError(err, "角色名称已存在", "角色不存在")
		}
		return map[string]interface{}{"role_id": role.ID, "name": role.Name}, nil
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Delete 删除角色，不留下引用它的用户授权、菜单权限和操作权限
func (s *RoleService) Delete(ctx context.Context, caller Caller, id uint) error {
	return s.mutate(ctx, caller, "role.delete", "role", func(tx *gorm.DB) (map[string]interface{}, error) {
		err := deleteWithDependents(tx, s.policy, &models.Role{}, id, "角色不存在", []dependent{
			{label: "用户角色关联", model: &models.RBAC{}, column: "role_id"},
			{label: "菜单权限", model: &models.MenuPermission{}, column: "role_id"},
			{label: "操作权限", model: &models.ActionPermission{}, column: "role_id"},
		})
		return map[string]interface{}{"role_id": id, "policy": string(s.policy)}, err
	})
}

// GetByID 根据ID获取角色
func (s *RoleService) GetByID(ctx context.Context, caller Caller, id uint) (*models.Role, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	var role models.Role
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		return nil, lookupError(err, "角色不存在")
	}
	return &role, nil
}

// GetWithPage 分页获取角色
func (s *RoleService) GetWithPage(ctx context.Context, caller Caller, keyword string, page, pageSize int) ([]*models.Role, int64, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, 0, err
	}

	var roles []*models.Role
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Role{})
	if keyword != "" {
		query = query.Where("name LIKE ?", fmt.Sprintf("%%%s%%", keyword))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询角色失败")
	}

	if err := query.Order("id").Scopes(pagination.Paginate(page, pageSize)).Find(&roles).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询角色失败")
	}

	return roles, total, nil
}

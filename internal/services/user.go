package services

import (
	"bezs/internal/models"
	apperr "bezs/pkg/errors"
	"bezs/pkg/pagination"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreateUserInput 创建用户参数
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Role     string `json:"role" validate:"required,oneof=admin guest user"`
}

// UpdateUserInput 更新用户参数
type UpdateUserInput struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Email  string `json:"email" validate:"omitempty,email,max=100"`
	Role   string `json:"role" validate:"required,oneof=admin guest user"`
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

type UserService struct {
	mutator
	policy DeletePolicy
}

func NewUserService(db *gorm.DB, guard *AccessGuard, audit *AuditRecorder, policy DeletePolicy) *UserService {
	return &UserService{
		mutator: mutator{db: db, guard: guard, audit: audit},
		policy:  policy,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户；身份通常由认证模块创建，这里供平台管理员录入
func (s *UserService) Create(ctx context.Context, caller Caller, input CreateUserInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Role == "" {
		input.Role = models.PlatformRoleUser
	}
	user := &models.User{
		Username: input.Username,
		Email:    strings.TrimSpace(input.Email),
		Name:     strings.TrimSpace(input.Name),
		Role:     input.Role,
		Status:   models.UserStatusActive,
	}

	err := s.mutate(ctx, caller, "user.create", "user", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := user.SetPassword(input.Password); err != nil {
			return nil, apperr.Internal("密码加密失败", err)
		}
		if err := tx.Create(user).Error; err != nil {
			return nil, insertError(err, "用户名已存在", "用户不存在")
		}
		return map[string]interface{}{"user_id": user.ID, "username": user.Username, "role": user.Role}, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update 更新用户资料与平台角色
func (s *UserService) Update(ctx context.Context, caller Caller, id uint, input UpdateUserInput) (*models.User, error) {
	var user models.User

	err := s.mutate(ctx, caller, "user.update", "user", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.First(&user, id).Error; err != nil {
			return nil, lookupError(err, "用户不存在")
		}
		previousRole := user.Role
		user.Name = strings.TrimSpace(input.Name)
		user.Email = strings.TrimSpace(input.Email)
		user.Role = input.Role
		user.Status = input.Status
		if err := tx.Save(&user).Error; err != nil {
			return nil, wrapStoreError(err, "更新用户失败")
		}
		return map[string]interface{}{"user_id": user.ID, "role": user.Role, "previous_role": previousRole, "status": user.Status}, nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete 删除用户及其组织角色关联
func (s *UserService) Delete(ctx context.Context, caller Caller, id uint) error {
	return s.mutate(ctx, caller, "user.delete", "user", func(tx *gorm.DB) (map[string]interface{}, error) {
		if id == caller.UserID {
			return nil, apperr.Validation("不能删除当前登录用户")
		}
		err := deleteWithDependents(tx, s.policy, &models.User{}, id, "用户不存在", []dependent{
			{label: "用户角色关联", model: &models.RBAC{}, column: "user_id"},
		})
		return map[string]interface{}{"user_id": id, "policy": string(s.policy)}, err
	})
}

// GetByID 获取用户，本人或平台管理员
func (s *UserService) GetByID(ctx context.Context, caller Caller, id uint) (*models.User, error) {
	if err := s.guard.RequireSelfOrAdmin(caller, id); err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// FindByID 内部查询，不经过守卫，供认证中间件使用
func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "用户不存在")
	}
	return &user, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *UserService) GetWithFiltersAndPage(ctx context.Context, caller Caller, role, keyword string, page, pageSize int) ([]*models.User, int64, error) {
	if err := s.guard.RequireAdmin(caller); err != nil {
		return nil, 0, err
	}

	var users []*models.User
	var total int64

	query := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("username LIKE ? OR email LIKE ? OR name LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询用户失败")
	}

	if err := query.Order("id").Scopes(pagination.Paginate(page, pageSize)).Find(&users).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询用户失败")
	}

	return users, total, nil
}

// ========== 认证相关方法 ==========

// Authenticate 用户名密码校验，失败统一返回 UnauthorizedError
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperr.Validation("用户名和密码不能为空")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("用户名或密码错误")
		}
		return nil, wrapStoreError(err, "查询用户失败")
	}

	if !user.CheckPassword(password) {
		return nil, apperr.Unauthorized("用户名或密码错误")
	}
	if !s.IsActive(&user) {
		return nil, apperr.Unauthorized("用户已被禁用")
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, wrapStoreError(err, "更新登录时间失败")
	}
	return &user, nil
}

// IsActive 检查用户是否激活
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

package services

import (
	"bezs/internal/models"
	"bezs/pkg/pagination"
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// OrganizationInput 创建/更新组织参数
type OrganizationInput struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Slug string `json:"slug" validate:"required,slug"`
}

type OrganizationService struct {
	mutator
	policy DeletePolicy
}

func NewOrganizationService(db *gorm.DB, guard *AccessGuard, audit *AuditRecorder, policy DeletePolicy) *OrganizationService {
	return &OrganizationService{
		mutator: mutator{db: db, guard: guard, audit: audit},
		policy:  policy,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建组织
func (s *OrganizationService) Create(ctx context.Context, caller Caller, input OrganizationInput) (*models.Organization, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = normalizeSlug(input.Slug)
	org := &models.Organization{Name: input.Name, Slug: input.Slug}

	err := s.mutate(ctx, caller, "organization.create", "organization", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.Create(org).Error; err != nil {
			return nil, insertError(err, "组织标识已存在", "组织不存在")
		}
		return map[string]interface{}{"organization_id": org.ID, "slug": org.Slug}, nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Update 更新组织
func (s *OrganizationService) Update(ctx context.Context, caller Caller, id uint, input OrganizationInput) (*models.Organization, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = normalizeSlug(input.Slug)
	var org models.Organization

	err := s.mutate(ctx, caller, "organization.update", "organization", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.First(&org, id).Error; err != nil {
			return nil, lookupError(err, "组织不存在")
		}
		org.Name = input.Name
		org.Slug = input.Slug
		if err := tx.Save(&org).Error; err != nil {
			return nil, insertError(err, "组织标识已存在", "组织不存在")
		}
		return map[string]interface{}{"organization_id": org.ID, "slug": org.Slug}, nil
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Delete 删除组织，按删除策略处理成员关联与应用启用关系
func (s *OrganizationService) Delete(ctx context.Context, caller Caller, id uint) error {
	return s.mutate(ctx, caller, "organization.delete", "organization", func(tx *gorm.DB) (map[string]interface{}, error) {
		err := deleteWithDependents(tx, s.policy, &models.Organization{}, id, "组织不存在", []dependent{
			{label: "成员角色关联", model: &models.RBAC{}, column: "organization_id"},
			{label: "应用启用关系", model: &models.AppOrganization{}, column: "organization_id"},
		})
		return map[string]interface{}{"organization_id": id, "policy": string(s.policy)}, err
	})
}

// GetByID 根据ID获取组织
func (s *OrganizationService) GetByID(ctx context.Context, caller Caller, id uint) (*models.Organization, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	var org models.Organization
	if err := s.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, lookupError(err, "组织不存在")
	}
	return &org, nil
}

// GetBySlug 根据标识获取组织
func (s *OrganizationService) GetBySlug(ctx context.Context, caller Caller, slug string) (*models.Organization, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	var org models.Organization
	if err := s.db.WithContext(ctx).Where("slug = ?", normalizeSlug(slug)).First(&org).Error; err != nil {
		return nil, lookupError(err, "组织不存在")
	}
	return &org, nil
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *OrganizationService) GetWithFiltersAndPage(ctx context.Context, caller Caller, keyword string, page, pageSize int) ([]*models.Organization, int64, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, 0, err
	}

	var orgs []*models.Organization
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Organization{})
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR slug LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询组织失败")
	}

	// 分页查询
	if err := query.Order("id").Scopes(pagination.Paginate(page, pageSize)).Find(&orgs).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询组织失败")
	}

	return orgs, total, nil
}

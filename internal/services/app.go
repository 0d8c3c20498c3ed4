package services

import (
	"bezs/internal/models"
	"bezs/pkg/pagination"
	"context"
	"strings"

	"gorm.io/gorm"
)

// AppInput 创建/更新应用参数
type AppInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"required,slug"`
	Type        string `json:"type" validate:"required,oneof=platform custom"`
	Description string `json:"description" validate:"max=255"`
}

// MenuItemInput 菜单项参数
type MenuItemInput struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Slug        string `json:"slug" validate:"required,slug"`
	Description string `json:"description" validate:"max=255"`
	Icon        string `json:"icon" validate:"max=100"`
}

// ActionInput 操作参数
type ActionInput struct {
	ActionName  string `json:"action_name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
	Icon        string `json:"icon" validate:"max=100"`
	ActionType  string `json:"action_type" validate:"required,oneof=button link"`
}

// AppService 应用注册表：应用及其菜单项、操作
type AppService struct {
	mutator
	policy DeletePolicy
}

func NewAppService(db *gorm.DB, guard *AccessGuard, audit *AuditRecorder, policy DeletePolicy) *AppService {
	return &AppService{
		mutator: mutator{db: db, guard: guard, audit: audit},
		policy:  policy,
	}
}

// ========== 应用 ==========

// Create 注册应用
func (s *AppService) Create(ctx context.Context, caller Caller, input AppInput) (*models.App, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = normalizeSlug(input.Slug)
	if input.Type == "" {
		input.Type = models.AppTypeCustom
	}
	app := &models.App{Name: input.Name, Slug: input.Slug, Type: input.Type, Description: input.Description}

	err := s.mutate(ctx, caller, "app.create", "app", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.Create(app).Error; err != nil {
			return nil, insertError(err, "应用标识已存在", "应用不存在")
		}
		return map[string]interface{}{"app_id": app.ID, "slug": app.Slug}, nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Update 更新应用
func (s *AppService) Update(ctx context.Context, caller Caller, id uint, input AppInput) (*models.App, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Slug = normalizeSlug(input.Slug)
	var app models.App

	err := s.mutate(ctx, caller, "app.update", "app", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.First(&app, id).Error; err != nil {
			return nil, lookupError(err, "应用不存在")
		}
		app.Name = input.Name
		app.Slug = input.Slug
		app.Type = input.Type
		app.Description = input.Description
		if err := tx.Omit("MenuItems", "Actions").Save(&app).Error; err != nil {
			return nil, insertError(err, "应用标识已存在", "应用不存在")
		}
		return map[string]interface{}{"app_id": app.ID, "slug": app.Slug}, nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Delete 删除应用，连同其菜单项、操作、授权和启用关系
func (s *AppService) Delete(ctx context.Context, caller Caller, id uint) error {
	return s.mutate(ctx, caller, "app.delete", "app", func(tx *gorm.DB) (map[string]interface{}, error) {
		// 授权行在菜单项/操作之前删除
		err := deleteWithDependents(tx, s.policy, &models.App{}, id, "应用不存在", []dependent{
			{label: "菜单权限", model: &models.MenuPermission{}, column: "app_id"},
			{label: "操作权限", model: &models.ActionPermission{}, column: "app_id"},
			{label: "应用启用关系", model: &models.AppOrganization{}, column: "app_id"},
			{label: "菜单项", model: &models.AppMenuItem{}, column: "app_id"},
			{label: "操作", model: &models.AppAction{}, column: "app_id"},
		})
		return map[string]interface{}{"app_id": id, "policy": string(s.policy)}, err
	})
}

// GetByID 获取应用及其菜单项、操作
func (s *AppService) GetByID(ctx context.Context, caller Caller, id uint) (*models.App, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	var app models.App
	err := s.db.WithContext(ctx).
		Preload("MenuItems", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Actions", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&app, id).Error
	if err != nil {
		return nil, lookupError(err, "应用不存在")
	}
	return &app, nil
}

// GetWithPage 分页获取应用
func (s *AppService) GetWithPage(ctx context.Context, caller Caller, appType string, page, pageSize int) ([]*models.App, int64, error) {
	if err := s.guard.RequireAuthenticated(caller); err != nil {
		return nil, 0, err
	}

	var apps []*models.App
	var total int64

	query := s.db.WithContext(ctx).Model(&models.App{})
	if appType != "" {
		query = query.Where("type = ?", appType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询应用失败")
	}

	if err := query.Order("id").Scopes(pagination.Paginate(page, pageSize)).Find(&apps).Error; err != nil {
		return nil, 0, wrapStoreError(err, "查询应用失败")
	}
	return apps, total, nil
}

// ========== 菜单项 ==========

// CreateMenuItem 为应用添加菜单项
func (s *AppService) CreateMenuItem(ctx context.Context, caller Caller, appID uint, input MenuItemInput) (*models.AppMenuItem, error) {
	input.Slug = normalizeSlug(input.Slug)
	item := &models.AppMenuItem{AppID: appID, Name: strings.TrimSpace(input.Name), Slug: input.Slug, Description: input.Description, Icon: input.Icon}

	err := s.mutate(ctx, caller, "app_menu_item.create", "app_menu_item", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("app_id", appID)); err != nil {
			return nil, err
		}
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := requireParents(tx, parentRef{"应用不存在", &models.App{}, map[string]interface{}{"id": appID}}); err != nil {
			return nil, err
		}
		if err := tx.Create(item).Error; err != nil {
			return nil, insertError(err, "该应用下菜单标识已存在", "应用不存在")
		}
		return map[string]interface{}{"app_id": appID, "app_menu_item_id": item.ID, "slug": item.Slug}, nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateMenuItem 更新菜单项
func (s *AppService) UpdateMenuItem(ctx context.Context, caller Caller, appID, itemID uint, input MenuItemInput) (*models.AppMenuItem, error) {
	input.Slug = normalizeSlug(input.Slug)
	var item models.AppMenuItem

	err := s.mutate(ctx, caller, "app_menu_item.update", "app_menu_item", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.Where("id = ? AND app_id = ?", itemID, appID).First(&item).Error; err != nil {
			return nil, lookupError(err, "菜单项不存在")
		}
		item.Name = strings.TrimSpace(input.Name)
		item.Slug = input.Slug
		item.Description = input.Description
		item.Icon = input.Icon
		if err := tx.Save(&item).Error; err != nil {
			return nil, insertError(err, "该应用下菜单标识已存在", "菜单项不存在")
		}
		return map[string]interface{}{"app_id": appID, "app_menu_item_id": item.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteMenuItem 删除菜单项
func (s *AppService) DeleteMenuItem(ctx context.Context, caller Caller, appID, itemID uint) error {
	return s.mutate(ctx, caller, "app_menu_item.delete", "app_menu_item", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireParents(tx, parentRef{"菜单项不存在", &models.AppMenuItem{}, map[string]interface{}{"id": itemID, "app_id": appID}}); err != nil {
			return nil, err
		}
		err := deleteWithDependents(tx, s.policy, &models.AppMenuItem{}, itemID, "菜单项不存在", []dependent{
			{label: "菜单权限", model: &models.MenuPermission{}, column: "app_menu_item_id"},
		})
		return map[string]interface{}{"app_id": appID, "app_menu_item_id": itemID, "policy": string(s.policy)}, err
	})
}

// ========== 操作 ==========

// CreateAction 为应用添加操作
func (s *AppService) CreateAction(ctx context.Context, caller Caller, appID uint, input ActionInput) (*models.AppAction, error) {
	input.ActionName = strings.TrimSpace(input.ActionName)
	if input.ActionType == "" {
		input.ActionType = models.ActionTypeButton
	}
	action := &models.AppAction{AppID: appID, ActionName: input.ActionName, Description: input.Description, Icon: input.Icon, ActionType: input.ActionType}

	err := s.mutate(ctx, caller, "app_action.create", "app_action", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireIDs(idOf("app_id", appID)); err != nil {
			return nil, err
		}
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := requireParents(tx, parentRef{"应用不存在", &models.App{}, map[string]interface{}{"id": appID}}); err != nil {
			return nil, err
		}
		if err := tx.Create(action).Error; err != nil {
			return nil, insertError(err, "该应用下操作名称已存在", "应用不存在")
		}
		return map[string]interface{}{"app_id": appID, "app_action_id": action.ID, "action_name": action.ActionName}, nil
	})
	if err != nil {
		return nil, err
	}
	return action, nil
}

// UpdateAction 更新操作
func (s *AppService) UpdateAction(ctx context.Context, caller Caller, appID, actionID uint, input ActionInput) (*models.AppAction, error) {
	input.ActionName = strings.TrimSpace(input.ActionName)
	var action models.AppAction

	err := s.mutate(ctx, caller, "app_action.update", "app_action", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := validateInput(input); err != nil {
			return nil, err
		}
		if err := tx.Where("id = ? AND app_id = ?", actionID, appID).First(&action).Error; err != nil {
			return nil, lookupError(err, "操作不存在")
		}
		action.ActionName = input.ActionName
		action.Description = input.Description
		action.Icon = input.Icon
		action.ActionType = input.ActionType
		if err := tx.Save(&action).Error; err != nil {
			return nil, insertError(err, "该应用下操作名称已存在", "操作不存在")
		}
		return map[string]interface{}{"app_id": appID, "app_action_id": action.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// DeleteAction 删除操作
func (s *AppService) DeleteAction(ctx context.Context, caller Caller, appID, actionID uint) error {
	return s.mutate(ctx, caller, "app_action.delete", "app_action", func(tx *gorm.DB) (map[string]interface{}, error) {
		if err := requireParents(tx, parentRef{"操作不存在", &models.AppAction{}, map[string]interface{}{"id": actionID, "app_id": appID}}); err != nil {
			return nil, err
		}
		err := deleteWithDependents(tx, s.policy, &models.AppAction{}, actionID, "操作不存在", []dependent{
			{label: "操作权限", model: &models.ActionPermission{}, column: "app_action_id"},
		})
		return map[string]interface{}{"app_id": appID, "app_action_id": actionID, "policy": string(s.policy)}, err
	})
}

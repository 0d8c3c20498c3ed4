package handlers

import (
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/pagination"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

type AppHandler struct {
	service *services.AppService
}

func NewAppHandler(service *services.AppService) *AppHandler {
	return &AppHandler{service: service}
}

// ========== 应用 ==========

// Create 注册应用
func (h *AppHandler) Create(c *gin.Context) {
	var req services.AppInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	app, err := h.service.Create(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, app)
}

// GetByID 获取应用及其菜单项和操作
func (h *AppHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}

	app, err := h.service.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, app)
}

// GetAll 分页获取应用，可按类型筛选
func (h *AppHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	apps, total, err := h.service.GetWithPage(c.Request.Context(), middleware.CallerFromContext(c), c.Query("type"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, apps, pageInfo)
}

// Update 更新应用
func (h *AppHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}

	var req services.AppInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	app, err := h.service.Update(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, app)
}

// Delete 删除应用
func (h *AppHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// ========== 菜单项 ==========

// CreateMenuItem 添加菜单项
func (h *AppHandler) CreateMenuItem(c *gin.Context) {
	appID, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}

	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	item, err := h.service.CreateMenuItem(c.Request.Context(), middleware.CallerFromContext(c), appID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, item)
}

// UpdateMenuItem 更新菜单项
func (h *AppHandler) UpdateMenuItem(c *gin.Context) {
	appID, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id", "菜单项ID")
	if !ok {
		return
	}

	var req services.MenuItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	item, err := h.service.UpdateMenuItem(c.Request.Context(), middleware.CallerFromContext(c), appID, itemID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, item)
}

// DeleteMenuItem 删除菜单项
func (h *AppHandler) DeleteMenuItem(c *gin.Context) {
	appID, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "item_id", "菜单项ID")
	if !ok {
		return
	}

	if err := h.service.DeleteMenuItem(c.Request.Context(), middleware.CallerFromContext(c), appID, itemID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// ========== 操作 ==========

// CreateAction 添加操作
func (h *AppHandler) CreateAction(c *gin.Context) {
	appID, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}

	var req services.ActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	action, err := h.service.CreateAction(c.Request.Context(), middleware.CallerFromContext(c), appID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, action)
}

// UpdateAction 更新操作
func (h *AppHandler) UpdateAction(c *gin.Context) {
	appID, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}
	actionID, ok := parseIDParam(c, "action_id", "操作ID")
	if !ok {
		return
	}

	var req services.ActionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	action, err := h.service.UpdateAction(c.Request.Context(), middleware.CallerFromContext(c), appID, actionID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, action)
}

// DeleteAction 删除操作
func (h *AppHandler) DeleteAction(c *gin.Context) {
	appID, ok := parseIDParam(c, "id", "应用ID")
	if !ok {
		return
	}
	actionID, ok := parseIDParam(c, "action_id", "操作ID")
	if !ok {
		return
	}

	if err := h.service.DeleteAction(c.Request.Context(), middleware.CallerFromContext(c), appID, actionID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

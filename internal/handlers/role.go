package handlers

import (
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/pagination"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{
		service: service,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req services.RoleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.service.Create(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, role)
}

// GetByID 获取角色
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}

	role, err := h.service.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, role)
}

// GetAll 分页获取角色
func (h *RoleHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	roles, total, err := h.service.GetWithPage(c.Request.Context(), middleware.CallerFromContext(c), c.Query("keyword"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 计算分页信息
	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, roles, pageInfo)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}

	var req services.RoleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.service.Update(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

package handlers

import (
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/pagination"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.service.Create(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, user)
}

// GetByID 获取用户
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "用户ID")
	if !ok {
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, user)
}

// GetAll 分页获取用户，支持按平台角色和关键字筛选
func (h *UserHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	role := c.Query("role")
	keyword := c.Query("keyword")

	users, total, err := h.service.GetWithFiltersAndPage(c.Request.Context(), middleware.CallerFromContext(c), role, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "用户ID")
	if !ok {
		return
	}

	var req services.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, user)
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "用户ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

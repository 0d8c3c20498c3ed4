package handlers

import (
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/pagination"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	service *services.OrganizationService
}

func NewOrganizationHandler(service *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// ========== 基础CRUD方法 ==========

// Create 创建组织
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req services.OrganizationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	org, err := h.service.Create(c.Request.Context(), middleware.CallerFromContext(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, org)
}

// GetByID 获取组织
func (h *OrganizationHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}

	org, err := h.service.GetByID(c.Request.Context(), middleware.CallerFromContext(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, org)
}

// GetBySlug 按标识获取组织
func (h *OrganizationHandler) GetBySlug(c *gin.Context) {
	org, err := h.service.GetBySlug(c.Request.Context(), middleware.CallerFromContext(c), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, org)
}

// GetAll 分页获取组织，支持关键字搜索
func (h *OrganizationHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")

	orgs, total, err := h.service.GetWithFiltersAndPage(c.Request.Context(), middleware.CallerFromContext(c), keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, orgs, pageInfo)
}

// Update 更新组织
func (h *OrganizationHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}

	var req services.OrganizationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	org, err := h.service.Update(c.Request.Context(), middleware.CallerFromContext(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, org)
}

// Delete 删除组织
func (h *OrganizationHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CallerFromContext(c), id); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

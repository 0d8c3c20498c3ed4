package handlers

import (
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

// MemberRequest 组织成员角色
type MemberRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	RoleID uint `json:"role_id" binding:"required"`
}

// OrganizationAppRequest 组织启用应用
type OrganizationAppRequest struct {
	AppID uint `json:"app_id" binding:"required"`
}

// MenuPermissionRequest 角色菜单权限
type MenuPermissionRequest struct {
	AppID         uint `json:"app_id" binding:"required"`
	AppMenuItemID uint `json:"app_menu_item_id" binding:"required"`
}

// ActionPermissionRequest 角色操作权限
type ActionPermissionRequest struct {
	AppID       uint `json:"app_id" binding:"required"`
	AppActionID uint `json:"app_action_id" binding:"required"`
}

type MappingHandler struct {
	service *services.MappingService
}

func NewMappingHandler(service *services.MappingService) *MappingHandler {
	return &MappingHandler{service: service}
}

// ========== 组织成员 ==========

// AddMember 为用户授予组织内角色
func (h *MappingHandler) AddMember(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	row, err := h.service.MapUserToOrgRole(c.Request.Context(), middleware.CallerFromContext(c), orgID, req.UserID, req.RoleID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, row)
}

// RemoveMember 撤销用户的组织内角色
func (h *MappingHandler) RemoveMember(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}
	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.UnmapUserFromOrgRole(c.Request.Context(), middleware.CallerFromContext(c), orgID, req.UserID, req.RoleID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "移除成功", nil)
}

// ListMembers 组织成员列表
func (h *MappingHandler) ListMembers(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}

	rows, err := h.service.ListOrgMembers(c.Request.Context(), middleware.CallerFromContext(c), orgID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, rows)
}

// ========== 组织应用 ==========

// AddApp 为组织启用应用
func (h *MappingHandler) AddApp(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}
	var req OrganizationAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	row, err := h.service.AddAppToOrganization(c.Request.Context(), middleware.CallerFromContext(c), req.AppID, orgID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, row)
}

// RemoveApp 为组织停用应用
func (h *MappingHandler) RemoveApp(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}
	appID, ok := parseIDParam(c, "app_id", "应用ID")
	if !ok {
		return
	}

	if err := h.service.RemoveAppFromOrganization(c.Request.Context(), middleware.CallerFromContext(c), appID, orgID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "移除成功", nil)
}

// ListApps 组织已启用的应用
func (h *MappingHandler) ListApps(c *gin.Context) {
	orgID, ok := parseIDParam(c, "id", "组织ID")
	if !ok {
		return
	}

	rows, err := h.service.ListOrganizationApps(c.Request.Context(), middleware.CallerFromContext(c), orgID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, rows)
}

// ========== 角色菜单权限 ==========

// GrantMenu 授予菜单权限
func (h *MappingHandler) GrantMenu(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}
	var req MenuPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	row, err := h.service.MapMenuPermission(c.Request.Context(), middleware.CallerFromContext(c), roleID, req.AppID, req.AppMenuItemID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, row)
}

// RevokeMenu 撤销菜单权限
func (h *MappingHandler) RevokeMenu(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}
	var req MenuPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.UnmapMenuPermission(c.Request.Context(), middleware.CallerFromContext(c), roleID, req.AppID, req.AppMenuItemID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "撤销成功", nil)
}

// ListMenus 角色菜单权限，可按 app_id 过滤
func (h *MappingHandler) ListMenus(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}
	appID, ok := parseIDQuery(c, "app_id", "应用ID", true)
	if !ok {
		return
	}

	rows, err := h.service.ListRoleMenuPermissions(c.Request.Context(), middleware.CallerFromContext(c), roleID, appID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, rows)
}

// ========== 角色操作权限 ==========

// GrantAction 授予操作权限
func (h *MappingHandler) GrantAction(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}
	var req ActionPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	row, err := h.service.MapActionPermission(c.Request.Context(), middleware.CallerFromContext(c), roleID, req.AppID, req.AppActionID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, row)
}

// RevokeAction 撤销操作权限
func (h *MappingHandler) RevokeAction(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}
	var req ActionPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.UnmapActionPermission(c.Request.Context(), middleware.CallerFromContext(c), roleID, req.AppID, req.AppActionID); err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessWithMessage(c, "撤销成功", nil)
}

// ListActions 角色操作权限，可按 app_id 过滤
func (h *MappingHandler) ListActions(c *gin.Context) {
	roleID, ok := parseIDParam(c, "id", "角色ID")
	if !ok {
		return
	}
	appID, ok := parseIDQuery(c, "app_id", "应用ID", true)
	if !ok {
		return
	}

	rows, err := h.service.ListRoleActionPermissions(c.Request.Context(), middleware.CallerFromContext(c), roleID, appID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, rows)
}

package handlers

import (
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	resolver *services.PermissionResolver
}

func NewPermissionHandler(resolver *services.PermissionResolver) *PermissionHandler {
	return &PermissionHandler{resolver: resolver}
}

// Resolve 计算指定用户的有效权限（本人或平台管理员）
// GET /permissions/resolve?user_id=&organization_id=&app_id=
func (h *PermissionHandler) Resolve(c *gin.Context) {
	userID, ok := parseIDQuery(c, "user_id", "用户ID", false)
	if !ok {
		return
	}
	orgID, ok := parseIDQuery(c, "organization_id", "组织ID", false)
	if !ok {
		return
	}
	appID, ok := parseIDQuery(c, "app_id", "应用ID", false)
	if !ok {
		return
	}

	set, err := h.resolver.Resolve(c.Request.Context(), middleware.CallerFromContext(c), userID, orgID, appID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, set)
}

// Me 当前用户的有效权限
// GET /permissions/me?organization_id=&app_id=
func (h *PermissionHandler) Me(c *gin.Context) {
	orgID, ok := parseIDQuery(c, "organization_id", "组织ID", false)
	if !ok {
		return
	}
	appID, ok := parseIDQuery(c, "app_id", "应用ID", false)
	if !ok {
		return
	}

	set, err := h.resolver.ResolveForCaller(c.Request.Context(), middleware.CallerFromContext(c), orgID, appID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, set)
}

// Check 当前用户能否执行某个操作
// GET /permissions/check?organization_id=&app_id=&action=
func (h *PermissionHandler) Check(c *gin.Context) {
	orgID, ok := parseIDQuery(c, "organization_id", "组织ID", false)
	if !ok {
		return
	}
	appID, ok := parseIDQuery(c, "app_id", "应用ID", false)
	if !ok {
		return
	}
	action := c.Query("action")
	if action == "" {
		response.BadRequest(c, "action 不能为空")
		return
	}

	allowed, err := h.resolver.HasAction(c.Request.Context(), middleware.CallerFromContext(c), orgID, appID, action)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"action": action, "allowed": allowed})
}

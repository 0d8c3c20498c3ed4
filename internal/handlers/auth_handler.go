package handlers

import (
	"time"

	"bezs/internal/middleware"
	"bezs/internal/models"
	"bezs/internal/services"
	"bezs/pkg/jwt"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	userService    *services.UserService
	mappingService *services.MappingService
	guard          *services.AccessGuard
	jwtManager     *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, mappingService *services.MappingService, guard *services.AccessGuard, jwtManager *jwt.JWTManager) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		mappingService: mappingService,
		guard:          guard,
		jwtManager:     jwtManager,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	User      UserInfo `json:"user"`
}

type UserInfo struct {
	ID              uint   `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	IsPlatformAdmin bool   `json:"is_platform_admin"`
}

// MeResponse 当前用户及其组织角色
type MeResponse struct {
	User        UserInfo      `json:"user"`
	Memberships []models.RBAC `json:"memberships"`
}

// userInfo 管理员标记与服务层守卫的判定保持一致
func (h *AuthHandler) userInfo(user *models.User) UserInfo {
	return UserInfo{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Name:            user.Name,
		Role:            user.Role,
		IsPlatformAdmin: h.guard.IsSuperuser(services.NewCaller(user)),
	}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// 生成Token
	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.jwtManager.GetTokenDuration()).Unix(),
		User:      h.userInfo(user),
	})
}

// RefreshToken 刷新Token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	// 以最新的用户信息重新签发
	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		response.ServerError(c, "生成Token失败")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": time.Now().Add(h.jwtManager.GetTokenDuration()).Unix(),
	})
}

// Me 当前用户信息
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return
	}

	memberships, err := h.mappingService.ListUserMemberships(c.Request.Context(), middleware.CallerFromContext(c), user.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, MeResponse{
		User:        h.userInfo(user),
		Memberships: memberships,
	})
}

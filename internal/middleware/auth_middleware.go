package middleware

import (
	"bezs/internal/models"
	"bezs/internal/services"
	apperr "bezs/pkg/errors"
	"bezs/pkg/jwt"
	"bezs/pkg/response"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextUser     = "user"
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextCaller   = "caller"
	ContextClaims   = "claims"
)

// UserFinder 按ID读取用户，认证中间件每次请求都重新读取以获取最新平台角色
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware 认证中间件
type AuthMiddleware struct {
	users      UserFinder
	jwtManager *jwt.JWTManager
}

func NewAuthMiddleware(users UserFinder, jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		users:      users,
		jwtManager: jwtManager,
	}
}

// RequireLogin 校验 Bearer Token，并把调用方写入上下文
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(authHeader[7:])

		// 验证token
		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 角色以数据库为准，避免令牌中的旧角色继续生效
		user, err := m.users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			// 只有确认用户不存在才算认证失败，存储故障按内部错误返回
			if apperr.KindOf(err) == apperr.KindNotFound {
				response.Unauthorized(c, "用户不存在")
			} else {
				response.FromError(c, apperr.Internal("读取用户失败", err))
			}
			c.Abort()
			return
		}

		if user.Status != models.UserStatusActive {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Set(ContextClaims, claims)
		c.Set(ContextCaller, services.NewCaller(user))
		c.Set(response.AuthenticatedKey, true)

		c.Next()
	}
}

// CallerFromContext 取出调用方，未登录时返回匿名调用方
func CallerFromContext(c *gin.Context) services.Caller {
	if v, ok := c.Get(ContextCaller); ok {
		if caller, ok := v.(services.Caller); ok {
			return caller
		}
	}
	return services.Anonymous()
}

// UserFromContext 取出当前用户
func UserFromContext(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

package services

import (
	"bezs/internal/models"
	apperr "bezs/pkg/errors"
	"bezs/pkg/logger"
	"bezs/pkg/metrics"
)

// Caller 调用方会话快照，由上层显式传入，核心代码不读取任何全局会话状态
type Caller struct {
	UserID        uint   `json:"user_id"`
	Role          string `json:"role"`
	Authenticated bool   `json:"authenticated"`
}

// Anonymous 未登录调用方
func Anonymous() Caller {
	return Caller{}
}

// NewCaller 由已认证用户构造调用方
func NewCaller(user *models.User) Caller {
	return Caller{
		UserID:        user.ID,
		Role:          user.Role,
		Authenticated: true,
	}
}

// AccessGuard 访问守卫，平台管理员判定只在这里实现
type AccessGuard struct{}

func NewAccessGuard() *AccessGuard {
	return &AccessGuard{}
}

// RequireAuthenticated 要求已登录
func (g *AccessGuard) RequireAuthenticated(caller Caller) error {
	ok := caller.Authenticated && caller.UserID != 0
	g.observe("require_authenticated", caller, ok)
	if !ok {
		return apperr.Unauthorized("请先登录")
	}
	return nil
}

// RequireAdmin 要求平台管理员
func (g *AccessGuard) RequireAdmin(caller Caller) error {
	if err := g.RequireAuthenticated(caller); err != nil {
		return err
	}
	ok := caller.Role == models.PlatformRoleAdmin
	g.observe("require_admin", caller, ok)
	if !ok {
		return apperr.Unauthorized("需要平台管理员权限")
	}
	return nil
}

// RequireSelfOrAdmin 本人或平台管理员
func (g *AccessGuard) RequireSelfOrAdmin(caller Caller, userID uint) error {
	if err := g.RequireAuthenticated(caller); err != nil {
		return err
	}
	if caller.UserID == userID {
		return nil
	}
	return g.RequireAdmin(caller)
}

// IsSuperuser 平台管理员在管理界面直接放行，不经过权限解析，也不写入任何授权行
func (g *AccessGuard) IsSuperuser(caller Caller) bool {
	return caller.Authenticated && caller.UserID != 0 && caller.Role == models.PlatformRoleAdmin
}

func (g *AccessGuard) observe(check string, caller Caller, allowed bool) {
	metrics.ObserveGuard(check, allowed)
	if !allowed {
		logger.WithModule("guard").WithFields(map[string]interface{}{
			"check":   check,
			"user_id": caller.UserID,
			"role":    caller.Role,
		}).Debug("access denied")
	}
}

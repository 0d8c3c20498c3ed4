package handlers

import (
	"context"
	"time"

	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/pagination"
	"bezs/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger 可探活的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler 系统处理器：健康检查、审计记录、一致性巡检
type SystemHandler struct {
	db          *gorm.DB
	guard       *services.AccessGuard
	consistency *services.ConsistencyService
	queue       Pinger // 未启用Redis时为nil
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(db *gorm.DB, guard *services.AccessGuard, consistency *services.ConsistencyService, queue Pinger) *SystemHandler {
	return &SystemHandler{
		db:          db,
		guard:       guard,
		consistency: consistency,
		queue:       queue,
	}
}

// Health 健康检查
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"database": "ok"}
	status := "ok"

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		status = "degraded"
	}
	if h.queue != nil {
		checks["redis"] = "ok"
		if err := h.queue.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			status = "degraded"
		}
	}

	response.Success(c, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now(),
		"service":   "bezs",
	})
}

// Ping 存活探针
func (h *SystemHandler) Ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}

// GetAuditLogs 审计记录（平台管理员），可按 action 过滤
func (h *SystemHandler) GetAuditLogs(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)

	logs, total, err := services.ListAuditLogs(c.Request.Context(), h.db, h.guard, middleware.CallerFromContext(c), c.Query("action"), pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.FromError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, logs, pageInfo)
}

// RunConsistencySweep 立即执行一次孤立关联巡检（平台管理员）
func (h *SystemHandler) RunConsistencySweep(c *gin.Context) {
	if err := h.guard.RequireAdmin(middleware.CallerFromContext(c)); err != nil {
		response.FromError(c, err)
		return
	}

	report, err := h.consistency.Sweep(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, report)
}

// GetConsistencyReport 最近一次巡检结果（平台管理员）
func (h *SystemHandler) GetConsistencyReport(c *gin.Context) {
	if err := h.guard.RequireAdmin(middleware.CallerFromContext(c)); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, h.consistency.LastReport())
}

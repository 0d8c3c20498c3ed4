package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bezs/internal/database"
	"bezs/internal/handlers"
	"bezs/internal/router"
	"bezs/internal/services"
	"bezs/pkg/config"
	"bezs/pkg/jwt"
	"bezs/pkg/logger"
	"bezs/pkg/metrics"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger := logger.GetLogger()
	appLogger.Info("Starting BEZS RBAC service...")

	// 初始化数据库
	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		// 关闭数据库连接
		if err := database.Close(); err != nil {
			appLogger.Error("Failed to close database:", err)
		}
		// 关闭Redis连接
		if err := database.CloseRedisQueue(); err != nil {
			appLogger.Error("Failed to close Redis:", err)
		}
	}()

	if err := database.Migrate(); err != nil {
		appLogger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := seedData(cfg); err != nil {
		appLogger.Fatalf("Failed to initialize seed data: %v", err)
	}

	metrics.Register()
	gin.SetMode(cfg.Server.Mode)

	db := database.GetDB()
	guard := services.NewAccessGuard()

	// 未启用Redis时不能把 nil 指针装进接口
	var publisher services.EventPublisher
	var pinger handlers.Pinger
	var events handlers.EventSource
	if q := database.GetRedisQueue(); q != nil {
		publisher = q
		pinger = q
		events = q
		appLogger.Infof("Audit events published to redis %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}
	audit := services.NewAuditRecorder(publisher)

	policy := services.DeletePolicy(cfg.RBAC.DeletePolicy)
	consistency := services.NewConsistencyService(db, cfg.RBAC.SweepDelete)
	if cfg.RBAC.SweepCron != "" {
		if err := consistency.Start(cfg.RBAC.SweepCron); err != nil {
			appLogger.Errorf("Failed to start consistency sweep: %v", err)
			// 不影响主服务启动
		}
	}
	defer consistency.Stop()

	r := router.SetupRouter(&router.Dependencies{
		DB:          db,
		Guard:       guard,
		Users:       services.NewUserService(db, guard, audit, policy),
		Orgs:        services.NewOrganizationService(db, guard, audit, policy),
		Roles:       services.NewRoleService(db, guard, audit, policy),
		Apps:        services.NewAppService(db, guard, audit, policy),
		Mapping:     services.NewMappingService(db, guard, audit),
		Resolver:    services.NewPermissionResolver(db, guard, services.ResolverOptions{StrictAppEnablement: cfg.RBAC.StrictAppEnablement}),
		Consistency: consistency,
		Queue:       pinger,
		Events:      events,
		JWT:         jwt.GetJWTManager(),
		CORS:        cfg.CORS,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	appLogger.Infof("Server started on port %s (delete policy: %s, strict app enablement: %v)",
		cfg.Server.Port, policy, cfg.RBAC.StrictAppEnablement)

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown:", err)
	}
	appLogger.Info("Server exited")
}

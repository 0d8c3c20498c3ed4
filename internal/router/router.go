package router

import (
	"bezs/internal/handlers"
	"bezs/internal/middleware"
	"bezs/internal/services"
	"bezs/pkg/config"
	"bezs/pkg/jwt"
	"bezs/pkg/metrics"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies 路由依赖，由 main 组装
type Dependencies struct {
	DB          *gorm.DB
	Guard       *services.AccessGuard
	Users       *services.UserService
	Orgs        *services.OrganizationService
	Roles       *services.RoleService
	Apps        *services.AppService
	Mapping     *services.MappingService
	Resolver    *services.PermissionResolver
	Consistency *services.ConsistencyService
	Queue       handlers.Pinger      // 未启用Redis时为nil
	Events      handlers.EventSource // 未启用Redis时为nil
	JWT         *jwt.JWTManager
	CORS        config.CORSConfig
}

// SetupRouter 设置路由
func SetupRouter(deps *Dependencies) *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS(deps.CORS))
	router.Use(metrics.GinMiddleware())

	// 注册路由
	registerRoutes(router, deps)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine, deps *Dependencies) {
	auth := middleware.NewAuthMiddleware(deps.Users, deps.JWT)
	login := auth.RequireLogin()

	systemHandler := handlers.NewSystemHandler(deps.DB, deps.Guard, deps.Consistency, deps.Queue)
	router.GET("/metrics", metrics.Handler())

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", systemHandler.Health)
		api.GET("/ping", systemHandler.Ping)

		// 认证
		authHandler := handlers.NewAuthHandler(deps.Users, deps.Mapping, deps.Guard, deps.JWT)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", login, authHandler.RefreshToken)
			authGroup.GET("/me", login, authHandler.Me)
		}

		mappingHandler := handlers.NewMappingHandler(deps.Mapping)

		// 以下接口都需要登录，是否为平台管理员由服务层守卫判定
		secured := api.Group("", login)

		// 用户
		userHandler := handlers.NewUserHandler(deps.Users)
		users := secured.Group("/users")
		{
			users.POST("", userHandler.Create)
			users.GET("", userHandler.GetAll)
			users.GET("/:id", userHandler.GetByID)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
		}

		// 组织
		orgHandler := handlers.NewOrganizationHandler(deps.Orgs)
		orgs := secured.Group("/organizations")
		{
			orgs.POST("", orgHandler.Create)
			orgs.GET("", orgHandler.GetAll)
			orgs.GET("/slug/:slug", orgHandler.GetBySlug)
			orgs.GET("/:id", orgHandler.GetByID)
			orgs.PUT("/:id", orgHandler.Update)
			orgs.DELETE("/:id", orgHandler.Delete)

			// 成员角色
			orgs.GET("/:id/members", mappingHandler.ListMembers)
			orgs.POST("/:id/members", mappingHandler.AddMember)
			orgs.DELETE("/:id/members", mappingHandler.RemoveMember)

			// 启用的应用
			orgs.GET("/:id/apps", mappingHandler.ListApps)
			orgs.POST("/:id/apps", mappingHandler.AddApp)
			orgs.DELETE("/:id/apps/:app_id", mappingHandler.RemoveApp)
		}

		// 角色
		roleHandler := handlers.NewRoleHandler(deps.Roles)
		roles := secured.Group("/roles")
		{
			roles.POST("", roleHandler.Create)
			roles.GET("", roleHandler.GetAll)
			roles.GET("/:id", roleHandler.GetByID)
			roles.PUT("/:id", roleHandler.Update)
			roles.DELETE("/:id", roleHandler.Delete)

			roles.GET("/:id/menu-permissions", mappingHandler.ListMenus)
			roles.POST("/:id/menu-permissions", mappingHandler.GrantMenu)
			roles.DELETE("/:id/menu-permissions", mappingHandler.RevokeMenu)

			roles.GET("/:id/action-permissions", mappingHandler.ListActions)
			roles.POST("/:id/action-permissions", mappingHandler.GrantAction)
			roles.DELETE("/:id/action-permissions", mappingHandler.RevokeAction)
		}

		// 应用
		appHandler := handlers.NewAppHandler(deps.Apps)
		apps := secured.Group("/apps")
		{
			apps.POST("", appHandler.Create)
			apps.GET("", appHandler.GetAll)
			apps.GET("/:id", appHandler.GetByID)
			apps.PUT("/:id", appHandler.Update)
			apps.DELETE("/:id", appHandler.Delete)

			apps.POST("/:id/menu-items", appHandler.CreateMenuItem)
			apps.PUT("/:id/menu-items/:item_id", appHandler.UpdateMenuItem)
			apps.DELETE("/:id/menu-items/:item_id", appHandler.DeleteMenuItem)

			apps.POST("/:id/actions", appHandler.CreateAction)
			apps.PUT("/:id/actions/:action_id", appHandler.UpdateAction)
			apps.DELETE("/:id/actions/:action_id", appHandler.DeleteAction)
		}

		// 权限解析
		permissionHandler := handlers.NewPermissionHandler(deps.Resolver)
		permissions := secured.Group("/permissions")
		{
			permissions.GET("/resolve", permissionHandler.Resolve)
			permissions.GET("/me", permissionHandler.Me)
			permissions.GET("/check", permissionHandler.Check)
		}

		// 系统管理
		system := secured.Group("/system")
		{
			system.GET("/audit-logs", systemHandler.GetAuditLogs)
			system.POST("/consistency/sweep", systemHandler.RunConsistencySweep)
			system.GET("/consistency/report", systemHandler.GetConsistencyReport)
		}

		// 审计事件推送依赖Redis
		if deps.Events != nil {
			eventHandler := handlers.NewEventStreamHandler(deps.Events, deps.Users, deps.Guard, deps.JWT, deps.CORS.AllowOrigins)
			system.GET("/events", eventHandler.Recent)
			// WebSocket 自行校验查询参数中的令牌
			api.GET("/system/events/ws", eventHandler.Stream)
		}
	}
}

package router

import (
	"time"

	"parcelhub/internal/handlers"
	"parcelhub/internal/middleware"
	"parcelhub/internal/models"
	"parcelhub/internal/services"
	"parcelhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	auth := middleware.NewAuthMiddleware()
	// 认证后的请求统一绑定租户作用域
	scoped := []gin.HandlerFunc{auth.RequireLogin(), auth.TenantScope()}

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// 🔓 公开运单查询（无需登录）
		parcelService := services.NewParcelService()
		parcelHandler := handlers.NewParcelHandler(parcelService)
		api.GET("/tracking/:tracking_number", parcelHandler.Track)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(services.NewUserService())
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/register", authHandler.Register)    // 客户自助注册
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 🔒 获取当前用户完整信息
			authGroup.GET("/me", auth.RequireLogin(), authHandler.Me)
		}

		// 🔐 租户路由（生命周期操作仅平台管理员）
		tenantHandler := handlers.NewTenantHandler(services.NewTenantService())
		tenants := api.Group("/tenants", scoped...)
		{
			tenants.POST("", auth.RequirePlatformAdmin(), tenantHandler.Create)
			tenants.GET("", tenantHandler.GetAll)
			tenants.GET("/:id", tenantHandler.GetByID)
			tenants.PUT("/:id", auth.RequirePlatformAdmin(), tenantHandler.Update)

			// 🔒 生命周期操作（仅平台管理员）
			tenants.POST("/:id/activate", auth.RequirePlatformAdmin(), tenantHandler.Activate)
			tenants.POST("/:id/deactivate", auth.RequirePlatformAdmin(), tenantHandler.Deactivate)
			tenants.POST("/:id/suspend", auth.RequirePlatformAdmin(), tenantHandler.Suspend)
			tenants.POST("/:id/resume", auth.RequirePlatformAdmin(), tenantHandler.Resume)

			// 🔒 统计功能（平台管理员专用）
			tenants.GET("/stats", auth.RequirePlatformAdmin(), tenantHandler.GetStats)
		}

		// 🔐 用户路由
		userHandler := handlers.NewUserHandler(services.NewUserService())
		users := api.Group("/users", scoped...)
		{
			users.POST("", userHandler.Create)
			users.GET("/:id", userHandler.GetByID)
			users.PUT("/:id", userHandler.Update)
			users.GET("/tenant/:tenant_id", userHandler.GetByTenant)

			// 🔒 生命周期操作
			users.POST("/:id/activate", userHandler.Activate)
			users.POST("/:id/deactivate", userHandler.Deactivate)

			// 🔒 角色分配
			users.POST("/:id/roles", userHandler.AssignRole)
			users.DELETE("/:id/roles/:role_id", userHandler.RemoveRole)
			users.GET("/:id/roles", userHandler.GetRoles)
		}

		// 🔐 角色路由（角色定义管理仅平台管理员）
		roleHandler := handlers.NewRoleHandler(services.NewRoleService())
		roles := api.Group("/roles", scoped...)
		{
			roles.POST("", auth.RequirePlatformAdmin(), roleHandler.Create)
			roles.GET("", roleHandler.List)
			roles.GET("/:id", roleHandler.GetByID)
			roles.PUT("/:id", auth.RequirePlatformAdmin(), roleHandler.Update)
			roles.DELETE("/:id", auth.RequirePlatformAdmin(), roleHandler.Delete)
		}

		// 🔐 网点路由
		locationHandler := handlers.NewLocationHandler(services.NewLocationService())
		locations := api.Group("/locations", scoped...)
		{
			locations.POST("", auth.RequireTenantEmployee(), locationHandler.Create)
			locations.GET("/:id", locationHandler.GetByID)
			locations.GET("/tenant/:tenant_id", locationHandler.GetByTenant)
			locations.PUT("/:id", auth.RequireTenantEmployee(), locationHandler.Update)

			// 🔒 生命周期操作
			locations.POST("/:id/activate", auth.RequireTenantEmployee(), locationHandler.Activate)
			locations.POST("/:id/deactivate", auth.RequireTenantEmployee(), locationHandler.Deactivate)
			locations.POST("/:id/close", auth.RequireTenantEmployee(), locationHandler.Close)
			locations.POST("/:id/reopen", auth.RequireTenantEmployee(), locationHandler.Reopen)
		}

		// 🔐 发货单路由
		shipmentHandler := handlers.NewShipmentHandler(services.NewShipmentService())
		shipments := api.Group("/shipments", scoped...)
		{
			shipments.POST("", auth.RequireTenantEmployee(), shipmentHandler.Create)
			shipments.POST("/customer", shipmentHandler.CreateByCustomer)
			shipments.GET("", shipmentHandler.GetAll)
			shipments.GET("/:id", shipmentHandler.GetByID)
			shipments.PUT("/:id", auth.RequireTenantEmployee(), shipmentHandler.Update)
			shipments.PUT("/:id/customer", shipmentHandler.UpdateByCustomer)

			// 🔒 审核与生命周期（仅员工）
			shipments.POST("/:id/validate", auth.RequireTenantEmployee(), shipmentHandler.Validate)
			shipments.POST("/:id/reject", auth.RequireTenantEmployee(), shipmentHandler.Reject)
			shipments.POST("/:id/confirm", auth.RequireTenantEmployee(), shipmentHandler.Confirm)
		}

		// 🔐 包裹路由
		parcels := api.Group("/parcels", scoped...)
		{
			parcels.POST("", auth.RequireTenantEmployee(), parcelHandler.Create)
			parcels.GET("/shipment/:shipment_id", parcelHandler.GetByShipment)
			parcels.GET("/:id", parcelHandler.GetByID)
			parcels.PUT("/:id", auth.RequireTenantEmployee(), parcelHandler.UpdateDetails)

			// 🔒 状态推进（仅员工，调度员/快递员角色）
			parcels.POST("/:id/status", auth.RequireRole(models.RoleCodeDispatcher), parcelHandler.UpdateStatus)
			parcels.POST("/:id/delivered", auth.RequireRole(models.RoleCodeCourier), parcelHandler.MarkDelivered)
			parcels.POST("/:id/failed", auth.RequireRole(models.RoleCodeCourier), parcelHandler.MarkFailed)
		}

		// 🔐 WebSocket路由（租户实时事件流）
		wsHandler := handlers.NewWebSocketHandler()
		ws := api.Group("/ws")
		{
			// WebSocket连接不能使用常规的中间件，认证通过query参数处理
			ws.GET("/events", wsHandler.TenantEvents)
		}
	}
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "ParcelHub",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}

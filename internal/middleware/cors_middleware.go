package middleware

import (
	"time"

	"parcelhub/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS 跨域配置，供租户管理后台与客户端页面调用API
// 允许的来源列表来自环境配置，凭证携带开关决定浏览器端能否带cookie
func SetupCORS() gin.HandlerFunc {
	cfg := config.GetConfig().CORS

	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAge) * time.Hour,
	})
}

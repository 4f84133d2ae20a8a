package middleware

import (
	"strings"

	"parcelhub/internal/identity"
	"parcelhub/internal/tenantctx"
	"parcelhub/pkg/jwt"
	"parcelhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 权限中间件
type AuthMiddleware struct {
	jwtManager *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwt.GetJWTManager(), // 使用全局JWT管理器
	}
}

// RequireLogin 验证JWT并构建请求actor
// token里的声明必须能构成合法的actor，否则整个请求立即失败
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

		tokenString := authHeader[7:] // 去掉 "Bearer "

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		// 声明 -> actor，类型与租户ID一致性在这里强制
		actor, err := identity.FromClaims(claims)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set("actor", actor)
		c.Set("user_id", actor.UserID)
		c.Set("username", actor.Username)

		c.Next()
	}
}

// TenantScope 为租户员工的请求绑定租户作用域
// 请求结束时无条件清空，防止残留的租户ID泄漏给复用的上下文
func (m *AuthMiddleware) TenantScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := tenantctx.New(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		defer tenantctx.Clear(ctx)

		if actor := GetActor(c); actor != nil && actor.IsTenantEmployee() {
			tenantctx.Bind(ctx, actor.TenantID)
		}

		c.Next()
	}
}

// RequirePlatformAdmin 要求平台管理员
func (m *AuthMiddleware) RequirePlatformAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !actor.IsPlatformAdmin() {
			response.Forbidden(c, "需要平台管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTenantEmployee 要求租户员工（或平台管理员）
func (m *AuthMiddleware) RequireTenantEmployee() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !actor.IsPlatformAdmin() && !actor.IsTenantEmployee() {
			response.Forbidden(c, "需要租户员工权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole 要求特定角色（平台管理员直接放行）
func (m *AuthMiddleware) RequireRole(roleCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !actor.IsPlatformAdmin() && !actor.HasRole(roleCode) {
			response.Forbidden(c, "权限不足：需要 "+roleCode+" 角色")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor 从gin上下文取出请求actor，未登录返回nil
func GetActor(c *gin.Context) *identity.Actor {
	v, exists := c.Get("actor")
	if !exists {
		return nil
	}
	actor, ok := v.(*identity.Actor)
	if !ok {
		return nil
	}
	return actor
}

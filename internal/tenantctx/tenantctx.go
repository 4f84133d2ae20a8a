package tenantctx

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// 租户作用域传播器
//
// 把当前请求的租户ID放进context，让请求内任意代码都能读取，
// 而不需要逐层显式传参。作用域是请求级的：并发请求各自持有独立的
// holder，互不可见。请求结束时必须无条件调用Clear——holder挂在可能
// 被复用的执行上下文上，残留的租户ID会泄漏给下一个请求，这是本包
// 要防住的最严重的一类安全缺陷。
//
// 传播器只描述作用域，不负责过滤：每条持久化访问路径自行应用Scope，
// 策略层独立负责拒绝跨租户操作。

type contextKey struct{}

// holder 可变租户槽
// 存指针而不是值，使Clear对所有持有同一context的代码立即生效
type holder struct {
	mu       sync.RWMutex
	tenantID uint
	bound    bool
}

// New 在context中安装一个空的租户槽
func New(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, &holder{})
}

// Bind 绑定当前请求的租户ID
// context中没有安装租户槽时是no-op（例如后台任务自行决定租户范围）
func Bind(ctx context.Context, tenantID uint) {
	h, ok := ctx.Value(contextKey{}).(*holder)
	if !ok {
		return
	}
	h.mu.Lock()
	h.tenantID = tenantID
	h.bound = true
	h.mu.Unlock()
}

// Current 读取当前请求的租户ID，未绑定时第二个返回值为false
func Current(ctx context.Context) (uint, bool) {
	h, ok := ctx.Value(contextKey{}).(*holder)
	if !ok {
		return 0, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.bound {
		return 0, false
	}
	return h.tenantID, true
}

// Clear 清空租户槽
// 幂等：重复调用是no-op；Clear之后Current总是返回未绑定
func Clear(ctx context.Context) {
	h, ok := ctx.Value(contextKey{}).(*holder)
	if !ok {
		return
	}
	h.mu.Lock()
	h.tenantID = 0
	h.bound = false
	h.mu.Unlock()
}

// Scope 返回按当前租户过滤的GORM作用域
// 未绑定租户时（平台管理员跨租户访问）不加过滤条件
// 这是纵深防御的一环：即使调用方忘记过滤，策略层也会独立拒绝跨租户操作
func Scope(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID, ok := Current(ctx); ok {
			return db.Where("tenant_id = ?", tenantID)
		}
		return db
	}
}

package tenantctx

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindAndCurrent(t *testing.T) {
	ctx := New(context.Background())

	_, ok := Current(ctx)
	assert.False(t, ok, "未绑定时必须返回absent")

	Bind(ctx, 42)
	tenantID, ok := Current(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(42), tenantID)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := New(context.Background())
	Bind(ctx, 7)

	Clear(ctx)
	_, ok := Current(ctx)
	assert.False(t, ok)

	// 连续两次Clear是no-op
	Clear(ctx)
	_, ok = Current(ctx)
	assert.False(t, ok)
}

// Clear对所有持有同一context的代码立即生效
func TestClearVisibleThroughDerivedContext(t *testing.T) {
	ctx := New(context.Background())
	Bind(ctx, 7)

	derived := context.WithValue(ctx, "k", "v") //nolint:staticcheck
	tenantID, ok := Current(derived)
	require.True(t, ok)
	require.Equal(t, uint(7), tenantID)

	Clear(ctx)
	_, ok = Current(derived)
	assert.False(t, ok, "Clear后派生context也必须观察到absent")
}

// 没有安装租户槽的context上所有操作都是安全的no-op
func TestNoHolderIsNoop(t *testing.T) {
	ctx := context.Background()

	Bind(ctx, 9)
	_, ok := Current(ctx)
	assert.False(t, ok)

	Clear(ctx) // 不panic
}

// 并发请求（各自的context）互不可见
func TestConcurrentRequestsAreIsolated(t *testing.T) {
	const requests = 200

	var wg sync.WaitGroup
	for i := 1; i <= requests; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()

			ctx := New(context.Background())
			Bind(ctx, id)
			defer Clear(ctx)

			for j := 0; j < 100; j++ {
				tenantID, ok := Current(ctx)
				if !ok || tenantID != id {
					t.Errorf("租户作用域泄漏: 期望%d, 读到%d", id, tenantID)
					return
				}
			}
		}(uint(i))
	}
	wg.Wait()
}

func TestRebindAfterClear(t *testing.T) {
	ctx := New(context.Background())
	Bind(ctx, 1)
	Clear(ctx)
	Bind(ctx, 2)

	tenantID, ok := Current(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(2), tenantID)
}

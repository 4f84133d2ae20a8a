package services

import (
	"testing"

	"parcelhub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTenantOperatingGuard(t *testing.T) {
	// 正常运营的租户可以发起新业务
	assert.NoError(t, checkTenantOperating(&models.Tenant{
		Status: models.TenantStatusActive,
	}))

	// 暂停的租户被拒绝，即使状态仍为active
	err := checkTenantOperating(&models.Tenant{
		Status:        models.TenantStatusActive,
		Suspended:     true,
		SuspendReason: "拖欠账单",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "暂停")

	// 停用的租户被拒绝
	err = checkTenantOperating(&models.Tenant{
		Status: models.TenantStatusInactive,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "停用")

	// 同时停用且暂停时，以暂停原因为准
	err = checkTenantOperating(&models.Tenant{
		Status:    models.TenantStatusInactive,
		Suspended: true,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "暂停")
}

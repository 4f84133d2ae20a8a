package services

import (
	"testing"

	"parcelhub/internal/models"
	"parcelhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerShipment(status string) *models.Shipment {
	customerID := uint(42)
	return &models.Shipment{Status: status, CustomerID: &customerID}
}

func employeeShipment(status string) *models.Shipment {
	return &models.Shipment{Status: status}
}

func TestShipmentValidateGuard(t *testing.T) {
	// 待审核的客户发货单可以审核通过
	assert.NoError(t, checkShipmentValidate(customerShipment(models.ShipmentStatusPendingValidation)))

	// 非待审核状态一律拒绝
	for _, status := range []string{
		models.ShipmentStatusOpen,
		models.ShipmentStatusConfirmed,
		models.ShipmentStatusRejected,
	} {
		err := checkShipmentValidate(customerShipment(status))
		require.Error(t, err, status)
		var stateErr *errors.InvalidStateTransitionError
		assert.ErrorAs(t, err, &stateErr)
	}

	// 员工创建的发货单没有审核步骤
	assert.Error(t, checkShipmentValidate(employeeShipment(models.ShipmentStatusPendingValidation)))
}

func TestShipmentRejectGuard(t *testing.T) {
	assert.NoError(t, checkShipmentReject(customerShipment(models.ShipmentStatusPendingValidation)))

	// OPEN状态的发货单不能再驳回
	err := checkShipmentReject(customerShipment(models.ShipmentStatusOpen))
	require.Error(t, err)
	var stateErr *errors.InvalidStateTransitionError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, models.ShipmentStatusOpen, stateErr.Current)
	assert.Equal(t, models.ShipmentStatusRejected, stateErr.Attempted)

	// 终态不能驳回
	assert.Error(t, checkShipmentReject(customerShipment(models.ShipmentStatusConfirmed)))
	assert.Error(t, checkShipmentReject(customerShipment(models.ShipmentStatusRejected)))
}

func TestShipmentConfirmGuard(t *testing.T) {
	// OPEN且有包裹才能确认
	assert.NoError(t, checkShipmentConfirm(employeeShipment(models.ShipmentStatusOpen), 1))
	assert.NoError(t, checkShipmentConfirm(employeeShipment(models.ShipmentStatusOpen), 10))

	// 空发货单不能确认
	err := checkShipmentConfirm(employeeShipment(models.ShipmentStatusOpen), 0)
	require.Error(t, err)
	var stateErr *errors.InvalidStateTransitionError
	assert.ErrorAs(t, err, &stateErr)

	// 非OPEN状态不能确认
	assert.Error(t, checkShipmentConfirm(customerShipment(models.ShipmentStatusPendingValidation), 1))
	assert.Error(t, checkShipmentConfirm(employeeShipment(models.ShipmentStatusConfirmed), 1))
	assert.Error(t, checkShipmentConfirm(customerShipment(models.ShipmentStatusRejected), 1))
}

func TestShipmentAddParcelGuard(t *testing.T) {
	assert.NoError(t, checkShipmentAddParcel(employeeShipment(models.ShipmentStatusOpen)))

	// 待审核、已确认、已驳回都不能添加包裹
	assert.Error(t, checkShipmentAddParcel(customerShipment(models.ShipmentStatusPendingValidation)))
	assert.Error(t, checkShipmentAddParcel(employeeShipment(models.ShipmentStatusConfirmed)))
	assert.Error(t, checkShipmentAddParcel(customerShipment(models.ShipmentStatusRejected)))
}

func TestShipmentModifyGuards(t *testing.T) {
	// 员工路径：仅OPEN可修改
	assert.NoError(t, checkShipmentEmployeeModify(employeeShipment(models.ShipmentStatusOpen)))
	assert.Error(t, checkShipmentEmployeeModify(customerShipment(models.ShipmentStatusPendingValidation)))
	assert.Error(t, checkShipmentEmployeeModify(employeeShipment(models.ShipmentStatusConfirmed)))

	// 客户路径：仅待审核可修改
	assert.NoError(t, checkShipmentCustomerModify(customerShipment(models.ShipmentStatusPendingValidation)))
	assert.Error(t, checkShipmentCustomerModify(customerShipment(models.ShipmentStatusOpen)))
	assert.Error(t, checkShipmentCustomerModify(customerShipment(models.ShipmentStatusRejected)))
}

func TestUserKindConsistencyGuard(t *testing.T) {
	// 租户员工必须携带租户ID
	assert.NoError(t, checkUserKindConsistency("TENANT_EMPLOYEE", 5))
	assert.Error(t, checkUserKindConsistency("TENANT_EMPLOYEE", 0))

	// 其他类型不得携带租户ID
	assert.NoError(t, checkUserKindConsistency("CUSTOMER", 0))
	assert.Error(t, checkUserKindConsistency("CUSTOMER", 5))
	assert.NoError(t, checkUserKindConsistency("PLATFORM_ADMIN", 0))
	assert.Error(t, checkUserKindConsistency("PLATFORM_ADMIN", 5))

	// 未知类型
	assert.Error(t, checkUserKindConsistency("ROBOT", 0))

	var malformed *errors.MalformedIdentityError
	assert.ErrorAs(t, checkUserKindConsistency("TENANT_EMPLOYEE", 0), &malformed)
}

func TestRoleCodePattern(t *testing.T) {
	valid := []string{"COURIER", "TENANT_ADMIN", "A_B_C"}
	for _, code := range valid {
		assert.True(t, roleCodePattern.MatchString(code), code)
	}

	invalid := []string{"", "tenant_admin", "TENANT-ADMIN", "_ADMIN", "ADMIN_", "ADMIN__X", "ADMIN1"}
	for _, code := range invalid {
		assert.False(t, roleCodePattern.MatchString(code), code)
	}
}

package policy

import (
	"testing"

	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func platformAdmin() *identity.Actor {
	return &identity.Actor{UserID: 1, Kind: identity.KindPlatformAdmin, Roles: []string{models.RoleCodePlatformAdmin}}
}

func employee(userID, tenantID uint, roles ...string) *identity.Actor {
	return &identity.Actor{UserID: userID, Kind: identity.KindTenantEmployee, TenantID: tenantID, Roles: roles}
}

func customer(userID uint) *identity.Actor {
	return &identity.Actor{UserID: userID, Kind: identity.KindCustomer}
}

func shipmentOf(tenantID uint, customerID *uint) *models.Shipment {
	s := &models.Shipment{TenantID: tenantID, Status: models.ShipmentStatusOpen, CustomerID: customerID}
	s.ID = 100
	return s
}

// 租户T1的员工访问租户T2的发货单必须被拒绝
func TestShipmentCrossTenantDenied(t *testing.T) {
	p := ShipmentPolicy{}
	actor := employee(5, 1)
	other := shipmentOf(2, nil)

	assert.False(t, p.CanRead(actor, other))

	err := p.ValidateRead(actor, other)
	require.Error(t, err)
	var denied *errors.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}

func TestShipmentSameTenantAllowed(t *testing.T) {
	p := ShipmentPolicy{}
	actor := employee(5, 1)
	own := shipmentOf(1, nil)

	assert.True(t, p.CanRead(actor, own))
	assert.True(t, p.CanModify(actor, own))
	assert.True(t, p.CanTransition(actor, own))
	assert.NoError(t, p.ValidateTransition(actor, own))
}

func TestShipmentPlatformAdminCrossTenant(t *testing.T) {
	p := ShipmentPolicy{}
	admin := platformAdmin()

	assert.True(t, p.CanRead(admin, shipmentOf(1, nil)))
	assert.True(t, p.CanRead(admin, shipmentOf(2, nil)))
	assert.True(t, p.CanTransition(admin, shipmentOf(2, nil)))
}

// 客户所有权与租户员工权限是两条独立的授权轴
func TestShipmentCustomerOwnership(t *testing.T) {
	p := ShipmentPolicy{}
	ownerID := uint(9)
	shipment := shipmentOf(1, &ownerID)

	assert.True(t, p.CanRead(customer(9), shipment))
	assert.True(t, p.CanCustomerModify(customer(9), shipment))

	assert.False(t, p.CanRead(customer(8), shipment), "其他客户不能读取")
	assert.False(t, p.CanCustomerModify(customer(8), shipment))
	assert.False(t, p.CanRead(customer(9), shipmentOf(1, nil)), "员工路径创建的发货单没有客户所有者")

	// 客户不能执行员工路径的修改和状态转换
	assert.False(t, p.CanModify(customer(9), shipment))
	assert.False(t, p.CanTransition(customer(9), shipment))
}

// PLATFORM作用域的角色不能分配给租户员工，在任何持久化写入之前即被拒绝
func TestRoleAssignScopeMismatchDenied(t *testing.T) {
	p := RolePolicy{}
	platformRole := &models.Role{Code: "PLATFORM_AUDITOR", Scope: models.RoleScopePlatform}
	target := &models.User{ActorKind: identity.KindTenantEmployee, TenantID: 1}
	target.ID = 3

	assert.False(t, p.CanAssign(platformAdmin(), platformRole, target))

	err := p.ValidateAssign(platformAdmin(), platformRole, target)
	var denied *errors.AccessDeniedError
	require.Error(t, err)
	assert.ErrorAs(t, err, &denied)
}

func TestRoleAssignTenantScope(t *testing.T) {
	p := RolePolicy{}
	tenantRole := &models.Role{Code: "DISPATCHER", Scope: models.RoleScopeTenant}
	target := &models.User{ActorKind: identity.KindTenantEmployee, TenantID: 1}
	target.ID = 3

	// 租户管理员在自己租户内可以分配
	assert.True(t, p.CanAssign(employee(2, 1, models.RoleCodeTenantAdmin), tenantRole, target))
	// 普通员工不能分配
	assert.False(t, p.CanAssign(employee(2, 1), tenantRole, target))
	// 其他租户的管理员不能分配
	assert.False(t, p.CanAssign(employee(2, 2, models.RoleCodeTenantAdmin), tenantRole, target))
	// 平台管理员总是可以
	assert.True(t, p.CanAssign(platformAdmin(), tenantRole, target))
	// 目标不是租户员工时作用域不匹配
	wrongTarget := &models.User{ActorKind: identity.KindCustomer}
	wrongTarget.ID = 4
	assert.False(t, p.CanAssign(platformAdmin(), tenantRole, wrongTarget))
}

// 任何人都不能移除自己的角色
func TestRoleUnassignSelfDenied(t *testing.T) {
	p := RolePolicy{}
	tenantRole := &models.Role{Code: "TENANT_ADMIN", Scope: models.RoleScopeTenant}
	self := &models.User{ActorKind: identity.KindTenantEmployee, TenantID: 1}
	self.ID = 2

	actor := employee(2, 1, models.RoleCodeTenantAdmin)
	assert.False(t, p.CanUnassign(actor, tenantRole, self))

	err := p.ValidateUnassign(actor, tenantRole, self)
	require.Error(t, err)
}

// 任何人都不能通过自助路径停用自己
func TestUserSelfDeactivationDenied(t *testing.T) {
	p := UserPolicy{}
	self := &models.User{ActorKind: identity.KindTenantEmployee, TenantID: 1}
	self.ID = 2

	assert.False(t, p.CanDeactivate(employee(2, 1, models.RoleCodeTenantAdmin), self))

	adminSelf := &models.User{ActorKind: identity.KindPlatformAdmin}
	adminSelf.ID = 1
	assert.False(t, p.CanDeactivate(platformAdmin(), adminSelf))
}

func TestUserCustomerOnlySelf(t *testing.T) {
	p := UserPolicy{}
	own := &models.User{ActorKind: identity.KindCustomer}
	own.ID = 9
	other := &models.User{ActorKind: identity.KindCustomer}
	other.ID = 8

	assert.True(t, p.CanRead(customer(9), own))
	assert.True(t, p.CanModify(customer(9), own))
	assert.False(t, p.CanRead(customer(9), other))
	assert.False(t, p.CanModify(customer(9), other))
}

func TestUserTenantAdminScope(t *testing.T) {
	p := UserPolicy{}
	colleague := &models.User{ActorKind: identity.KindTenantEmployee, TenantID: 1}
	colleague.ID = 3
	outsider := &models.User{ActorKind: identity.KindTenantEmployee, TenantID: 2}
	outsider.ID = 4

	admin := employee(2, 1, models.RoleCodeTenantAdmin)
	assert.True(t, p.CanModify(admin, colleague))
	assert.True(t, p.CanDeactivate(admin, colleague))
	assert.False(t, p.CanModify(admin, outsider))

	// 普通员工可以读同租户，但不能改同事
	plain := employee(5, 1)
	assert.True(t, p.CanRead(plain, colleague))
	assert.False(t, p.CanModify(plain, colleague))
}

func TestTenantPolicy(t *testing.T) {
	p := TenantPolicy{}
	tenant := &models.Tenant{Code: "AGY-2026-00001"}
	tenant.ID = 1

	assert.True(t, p.CanRead(platformAdmin(), tenant))
	assert.True(t, p.CanRead(employee(2, 1), tenant))
	assert.False(t, p.CanRead(employee(2, 2), tenant))
	assert.False(t, p.CanRead(customer(9), tenant))

	assert.True(t, p.CanModify(employee(2, 1, models.RoleCodeTenantAdmin), tenant))
	assert.False(t, p.CanModify(employee(2, 1), tenant), "修改租户需要管理员角色")

	assert.True(t, p.CanAdminister(platformAdmin()))
	assert.False(t, p.CanAdminister(employee(2, 1, models.RoleCodeTenantAdmin)))
}

func TestLocationPolicy(t *testing.T) {
	p := LocationPolicy{}
	location := &models.Location{TenantID: 1}

	assert.True(t, p.CanModify(employee(2, 1), location))
	assert.False(t, p.CanModify(employee(2, 2), location))
	assert.False(t, p.CanModify(customer(9), location))
	assert.True(t, p.CanCreate(platformAdmin(), 2))
	assert.False(t, p.CanCreate(employee(2, 1), 2))
}

func TestParcelPolicy(t *testing.T) {
	p := ParcelPolicy{}
	ownerID := uint(9)
	parcel := &models.Parcel{TenantID: 1, Shipment: shipmentOf(1, &ownerID)}

	assert.True(t, p.CanRead(employee(2, 1), parcel))
	assert.False(t, p.CanRead(employee(2, 2), parcel))
	assert.True(t, p.CanRead(customer(9), parcel), "客户通过发货单所有权读取包裹")
	assert.False(t, p.CanRead(customer(8), parcel))

	// 未预加载发货单时客户一律拒绝
	bare := &models.Parcel{TenantID: 1}
	assert.False(t, p.CanRead(customer(9), bare))

	assert.False(t, p.CanUpdateStatus(customer(9), parcel))
	assert.True(t, p.CanUpdateStatus(platformAdmin(), parcel))
}

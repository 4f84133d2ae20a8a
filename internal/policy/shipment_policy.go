package policy

import (
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
)

// ShipmentPolicy 发货单资源的访问策略
// 客户对自己发货单的所有权与租户员工权限是两条独立的授权轴
type ShipmentPolicy struct{}

// isOwner 客户是否拥有该发货单
func isOwner(actor *identity.Actor, shipment *models.Shipment) bool {
	return actor.IsCustomer() &&
		shipment.CustomerID != nil && *shipment.CustomerID == actor.UserID
}

// CanRead 是否可以读取发货单
func (ShipmentPolicy) CanRead(actor *identity.Actor, shipment *models.Shipment) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	if actor.IsTenantEmployee() {
		return actor.TenantID == shipment.TenantID
	}
	return isOwner(actor, shipment)
}

// CanModify 员工路径是否可以修改发货单（状态守卫由生命周期服务负责）
func (ShipmentPolicy) CanModify(actor *identity.Actor, shipment *models.Shipment) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == shipment.TenantID
}

// CanCustomerModify 客户路径是否可以修改发货单（独立的修改守卫）
func (ShipmentPolicy) CanCustomerModify(actor *identity.Actor, shipment *models.Shipment) bool {
	return isOwner(actor, shipment)
}

// CanTransition 是否可以执行审核/驳回/确认等状态转换
func (ShipmentPolicy) CanTransition(actor *identity.Actor, shipment *models.Shipment) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == shipment.TenantID
}

// ValidateRead 读取校验
func (p ShipmentPolicy) ValidateRead(actor *identity.Actor, shipment *models.Shipment) error {
	if !p.CanRead(actor, shipment) {
		return deny("shipment", "read", "")
	}
	return nil
}

// ValidateModify 员工修改校验
func (p ShipmentPolicy) ValidateModify(actor *identity.Actor, shipment *models.Shipment) error {
	if !p.CanModify(actor, shipment) {
		return deny("shipment", "modify", "")
	}
	return nil
}

// ValidateCustomerModify 客户修改校验
func (p ShipmentPolicy) ValidateCustomerModify(actor *identity.Actor, shipment *models.Shipment) error {
	if !p.CanCustomerModify(actor, shipment) {
		return deny("shipment", "modify", "仅发起客户本人")
	}
	return nil
}

// ValidateTransition 状态转换校验
func (p ShipmentPolicy) ValidateTransition(actor *identity.Actor, shipment *models.Shipment) error {
	if !p.CanTransition(actor, shipment) {
		return deny("shipment", "transition", "")
	}
	return nil
}

package policy

import (
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
)

// ParcelPolicy 包裹资源的访问策略
// 客户所有权通过包裹所属的发货单判定，调用方需预加载Shipment
type ParcelPolicy struct{}

// CanRead 是否可以读取包裹
func (ParcelPolicy) CanRead(actor *identity.Actor, parcel *models.Parcel) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	if actor.IsTenantEmployee() {
		return actor.TenantID == parcel.TenantID
	}
	if actor.IsCustomer() && parcel.Shipment != nil {
		return isOwner(actor, parcel.Shipment)
	}
	return false
}

// CanModify 是否可以修改包裹核心字段（状态守卫由生命周期服务负责）
func (ParcelPolicy) CanModify(actor *identity.Actor, parcel *models.Parcel) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == parcel.TenantID
}

// CanUpdateStatus 是否可以推进包裹生命周期
func (ParcelPolicy) CanUpdateStatus(actor *identity.Actor, parcel *models.Parcel) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == parcel.TenantID
}

// ValidateRead 读取校验
func (p ParcelPolicy) ValidateRead(actor *identity.Actor, parcel *models.Parcel) error {
	if !p.CanRead(actor, parcel) {
		return deny("parcel", "read", "")
	}
	return nil
}

// ValidateModify 修改校验
func (p ParcelPolicy) ValidateModify(actor *identity.Actor, parcel *models.Parcel) error {
	if !p.CanModify(actor, parcel) {
		return deny("parcel", "modify", "")
	}
	return nil
}

// ValidateUpdateStatus 状态推进校验
func (p ParcelPolicy) ValidateUpdateStatus(actor *identity.Actor, parcel *models.Parcel) error {
	if !p.CanUpdateStatus(actor, parcel) {
		return deny("parcel", "update_status", "")
	}
	return nil
}

package policy

import (
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
)

// LocationPolicy 网点资源的访问策略
type LocationPolicy struct{}

// CanRead 是否可以读取网点信息
func (LocationPolicy) CanRead(actor *identity.Actor, location *models.Location) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == location.TenantID
}

// CanModify 是否可以修改/关闭/重开网点
func (LocationPolicy) CanModify(actor *identity.Actor, location *models.Location) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == location.TenantID
}

// CanCreate 是否可以在指定租户下创建网点
func (LocationPolicy) CanCreate(actor *identity.Actor, tenantID uint) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == tenantID
}

// ValidateRead 读取校验
func (p LocationPolicy) ValidateRead(actor *identity.Actor, location *models.Location) error {
	if !p.CanRead(actor, location) {
		return deny("location", "read", "")
	}
	return nil
}

// ValidateModify 修改校验
func (p LocationPolicy) ValidateModify(actor *identity.Actor, location *models.Location) error {
	if !p.CanModify(actor, location) {
		return deny("location", "modify", "")
	}
	return nil
}

// ValidateCreate 创建校验
func (p LocationPolicy) ValidateCreate(actor *identity.Actor, tenantID uint) error {
	if !p.CanCreate(actor, tenantID) {
		return deny("location", "create", "")
	}
	return nil
}

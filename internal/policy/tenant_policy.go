package policy

import (
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
)

// TenantPolicy 租户资源的访问策略
type TenantPolicy struct{}

// CanRead 是否可以读取租户信息
func (TenantPolicy) CanRead(actor *identity.Actor, tenant *models.Tenant) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() && actor.TenantID == tenant.ID
}

// CanModify 是否可以修改租户资料
// 租户员工只能修改自己的租户，且必须持有租户管理员角色
func (TenantPolicy) CanModify(actor *identity.Actor, tenant *models.Tenant) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() &&
		actor.TenantID == tenant.ID &&
		actor.HasRole(models.RoleCodeTenantAdmin)
}

// CanAdminister 是否可以创建/停用/暂停租户（平台级操作）
func (TenantPolicy) CanAdminister(actor *identity.Actor) bool {
	return actor.IsPlatformAdmin()
}

// ValidateRead 读取校验
func (p TenantPolicy) ValidateRead(actor *identity.Actor, tenant *models.Tenant) error {
	if !p.CanRead(actor, tenant) {
		return deny("tenant", "read", "")
	}
	return nil
}

// ValidateModify 修改校验
func (p TenantPolicy) ValidateModify(actor *identity.Actor, tenant *models.Tenant) error {
	if !p.CanModify(actor, tenant) {
		return deny("tenant", "modify", "")
	}
	return nil
}

// ValidateAdminister 平台级操作校验
func (p TenantPolicy) ValidateAdminister(actor *identity.Actor) error {
	if !p.CanAdminister(actor) {
		return deny("tenant", "administer", "仅平台管理员")
	}
	return nil
}

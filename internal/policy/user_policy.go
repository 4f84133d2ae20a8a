package policy

import (
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
)

// UserPolicy 用户资源的访问策略
type UserPolicy struct{}

// CanRead 是否可以读取用户信息
// 客户只能读取本人档案
func (UserPolicy) CanRead(actor *identity.Actor, user *models.User) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	if actor.IsTenantEmployee() {
		return user.TenantID != 0 && user.TenantID == actor.TenantID
	}
	return actor.UserID == user.ID
}

// CanModify 是否可以修改用户资料
// 本人可以改自己的档案；租户管理员可以改同租户的员工
func (UserPolicy) CanModify(actor *identity.Actor, user *models.User) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	if actor.UserID == user.ID {
		return true
	}
	return actor.IsTenantEmployee() &&
		actor.HasRole(models.RoleCodeTenantAdmin) &&
		user.TenantID != 0 && user.TenantID == actor.TenantID
}

// CanDeactivate 是否可以停用用户
// 任何人都不能通过自助路径停用自己
func (UserPolicy) CanDeactivate(actor *identity.Actor, user *models.User) bool {
	if actor.UserID == user.ID {
		return false
	}
	if actor.IsPlatformAdmin() {
		return true
	}
	return actor.IsTenantEmployee() &&
		actor.HasRole(models.RoleCodeTenantAdmin) &&
		user.TenantID != 0 && user.TenantID == actor.TenantID
}

// CanCreate 是否可以创建用户
func (UserPolicy) CanCreate(actor *identity.Actor, kind string, tenantID uint) bool {
	if actor.IsPlatformAdmin() {
		return true
	}
	// 租户管理员只能在自己的租户内创建员工
	return actor.IsTenantEmployee() &&
		actor.HasRole(models.RoleCodeTenantAdmin) &&
		kind == identity.KindTenantEmployee &&
		tenantID == actor.TenantID
}

// ValidateRead 读取校验
func (p UserPolicy) ValidateRead(actor *identity.Actor, user *models.User) error {
	if !p.CanRead(actor, user) {
		return deny("user", "read", "")
	}
	return nil
}

// ValidateModify 修改校验
func (p UserPolicy) ValidateModify(actor *identity.Actor, user *models.User) error {
	if !p.CanModify(actor, user) {
		return deny("user", "modify", "")
	}
	return nil
}

// ValidateDeactivate 停用校验
func (p UserPolicy) ValidateDeactivate(actor *identity.Actor, user *models.User) error {
	if !p.CanDeactivate(actor, user) {
		if actor.UserID == user.ID {
			return deny("user", "deactivate", "不能停用自己")
		}
		return deny("user", "deactivate", "")
	}
	return nil
}

// ValidateCreate 创建校验
func (p UserPolicy) ValidateCreate(actor *identity.Actor, kind string, tenantID uint) error {
	if !p.CanCreate(actor, kind, tenantID) {
		return deny("user", "create", "")
	}
	return nil
}

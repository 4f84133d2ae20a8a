package policy

import (
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
)

// RolePolicy 角色资源的访问策略
// 角色分配除基线规则外还检查角色作用域与目标actor类型的匹配
type RolePolicy struct{}

// CanManage 是否可以创建/修改/删除角色定义（平台级操作）
func (RolePolicy) CanManage(actor *identity.Actor) bool {
	return actor.IsPlatformAdmin()
}

// CanAssign 是否可以把角色分配给目标用户
// PLATFORM作用域的角色只能由平台管理员分配给平台管理员；
// TENANT作用域的角色只能由租户管理员在自己租户内分配（或平台管理员），
// 目标必须是租户员工；CUSTOMER作用域的角色只能分配给客户
func (RolePolicy) CanAssign(actor *identity.Actor, role *models.Role, target *models.User) bool {
	// 角色作用域必须与目标actor类型匹配
	switch role.Scope {
	case models.RoleScopePlatform:
		if target.ActorKind != identity.KindPlatformAdmin {
			return false
		}
		return actor.IsPlatformAdmin()
	case models.RoleScopeTenant:
		if target.ActorKind != identity.KindTenantEmployee {
			return false
		}
		if actor.IsPlatformAdmin() {
			return true
		}
		return actor.IsTenantEmployee() &&
			actor.HasRole(models.RoleCodeTenantAdmin) &&
			target.TenantID == actor.TenantID
	case models.RoleScopeCustomer:
		if target.ActorKind != identity.KindCustomer {
			return false
		}
		return actor.IsPlatformAdmin()
	default:
		return false
	}
}

// CanUnassign 是否可以移除目标用户的角色
// 分配规则之外再加一条：任何人都不能移除自己的角色
func (p RolePolicy) CanUnassign(actor *identity.Actor, role *models.Role, target *models.User) bool {
	if actor.UserID == target.ID {
		return false
	}
	return p.CanAssign(actor, role, target)
}

// ValidateManage 角色管理校验
func (p RolePolicy) ValidateManage(actor *identity.Actor) error {
	if !p.CanManage(actor) {
		return deny("role", "manage", "仅平台管理员")
	}
	return nil
}

// ValidateAssign 角色分配校验
func (p RolePolicy) ValidateAssign(actor *identity.Actor, role *models.Role, target *models.User) error {
	if !p.CanAssign(actor, role, target) {
		return deny("role", "assign", "角色作用域与目标用户不匹配或权限不足")
	}
	return nil
}

// ValidateUnassign 角色移除校验
func (p RolePolicy) ValidateUnassign(actor *identity.Actor, role *models.Role, target *models.User) error {
	if !p.CanUnassign(actor, role, target) {
		if actor.UserID == target.ID {
			return deny("role", "unassign", "不能移除自己的角色")
		}
		return deny("role", "unassign", "")
	}
	return nil
}

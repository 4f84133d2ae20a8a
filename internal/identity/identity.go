package identity

import (
	"parcelhub/pkg/errors"
	"parcelhub/pkg/jwt"
)

// Actor类型常量
const (
	KindCustomer       = "CUSTOMER"
	KindTenantEmployee = "TENANT_EMPLOYEE"
	KindPlatformAdmin  = "PLATFORM_ADMIN"
)

// Actor 请求级的可信身份描述
// 每次请求从已验证的token声明中重新构建，不持久化、不修改，请求结束即丢弃
type Actor struct {
	UserID   uint
	Username string
	Kind     string
	TenantID uint // 仅租户员工非0
	Roles    []string
}

// FromClaims 从已验证的JWT声明构建Actor
// 不做任何I/O；actor-kind缺失/未知，或租户ID的有无与actor-kind不一致时报错
func FromClaims(claims *jwt.JWTClaims) (*Actor, error) {
	if claims == nil {
		return nil, errors.NewMalformedIdentity("声明为空")
	}

	switch claims.ActorKind {
	case KindTenantEmployee:
		if claims.TenantID == 0 {
			return nil, errors.NewMalformedIdentity("租户员工必须携带租户ID")
		}
	case KindCustomer, KindPlatformAdmin:
		if claims.TenantID != 0 {
			return nil, errors.NewMalformedIdentity("非租户员工不允许携带租户ID")
		}
	case "":
		return nil, errors.NewMalformedIdentity("缺少actor-kind声明")
	default:
		return nil, errors.NewMalformedIdentity("未知的actor-kind: " + claims.ActorKind)
	}

	roles := make([]string, len(claims.Roles))
	copy(roles, claims.Roles)

	return &Actor{
		UserID:   claims.UserID,
		Username: claims.Username,
		Kind:     claims.ActorKind,
		TenantID: claims.TenantID,
		Roles:    roles,
	}, nil
}

// IsPlatformAdmin 是否平台管理员
func (a *Actor) IsPlatformAdmin() bool {
	return a.Kind == KindPlatformAdmin
}

// IsTenantEmployee 是否租户员工
func (a *Actor) IsTenantEmployee() bool {
	return a.Kind == KindTenantEmployee
}

// IsCustomer 是否客户
func (a *Actor) IsCustomer() bool {
	return a.Kind == KindCustomer
}

// HasRole 是否持有指定角色
func (a *Actor) HasRole(code string) bool {
	for _, r := range a.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// ValidKind 检查actor-kind是否合法
func ValidKind(kind string) bool {
	switch kind {
	case KindCustomer, KindTenantEmployee, KindPlatformAdmin:
		return true
	default:
		return false
	}
}

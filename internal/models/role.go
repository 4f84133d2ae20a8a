package models

// Role 角色模型
// 代码不可变，格式为大写+下划线；scope限定角色可以分配给哪类actor
type Role struct {
	BaseModel
	Code        string `gorm:"uniqueIndex;size:100;not null" json:"code"` // 角色代码，如 "TENANT_ADMIN"
	Name        string `gorm:"size:100;not null" json:"name"`             // 角色名称，如 "租户管理员"
	Description string `gorm:"size:255" json:"description"`               // 角色描述
	Scope       string `gorm:"size:20;not null;index" json:"scope"`       // TENANT / PLATFORM / CUSTOMER
	Status      string `gorm:"size:20;default:'active'" json:"status"`    // active / inactive
}

// TableName 表名
func (r *Role) TableName() string {
	return "roles"
}

// 角色状态常量
const (
	RoleStatusActive   = "active"
	RoleStatusInactive = "inactive"
)

// 角色作用域常量 - 角色只能分配给与作用域匹配的actor
const (
	RoleScopeTenant   = "TENANT"
	RoleScopePlatform = "PLATFORM"
	RoleScopeCustomer = "CUSTOMER"
)

// 系统预定义角色代码常量
const (
	RoleCodePlatformAdmin = "PLATFORM_ADMIN" // 平台超级管理员
	RoleCodeTenantAdmin   = "TENANT_ADMIN"   // 租户管理员
	RoleCodeDispatcher    = "DISPATCHER"     // 调度员
	RoleCodeCourier       = "COURIER"        // 快递员
	RoleCodeCustomer      = "CUSTOMER"       // 客户
)

// IsActive 角色是否激活
func (r *Role) IsActive() bool {
	return r.Status == RoleStatusActive
}

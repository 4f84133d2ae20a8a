package models

// Tenant 租户（物流代理商）模型 - 贫血模型，只包含数据结构
// 租户是所有属性授权的根：网点、员工、发货单、包裹都归属于唯一租户
type Tenant struct {
	BaseModel
	Name          string `json:"name" gorm:"not null;size:100"`
	Code          string `json:"code" gorm:"unique;not null;size:50;index"` // 人类可读的唯一代码，由生成器产生
	Status        string `json:"status" gorm:"default:'active';size:20"`
	Suspended     bool   `json:"suspended" gorm:"default:false"` // 暂停与停用相互独立
	SuspendReason string `json:"suspend_reason" gorm:"size:255"`

	Locations []Location `gorm:"foreignKey:TenantID" json:"locations,omitempty"`
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "tenants"
}

// 租户状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// CanOperate 租户是否可以发起新业务（暂停或停用的租户不能）
func (t *Tenant) CanOperate() bool {
	return t.Status == TenantStatusActive && !t.Suspended
}

package models

// Location 网点模型 - 归属于唯一租户
// active与temporarily_closed相互独立：关闭意味着不可运营，
// 但关闭后恢复需要显式reopen，而不是仅仅重新激活
type Location struct {
	BaseModel
	TenantID          uint   `json:"tenant_id" gorm:"not null;index"`
	Name              string `json:"name" gorm:"not null;size:100"`
	Address           string `json:"address" gorm:"size:255"`
	City              string `json:"city" gorm:"size:100"`
	Active            bool   `json:"active" gorm:"default:true"`
	TemporarilyClosed bool   `json:"temporarily_closed" gorm:"default:false"`
	CloseReason       string `json:"close_reason" gorm:"size:255"`

	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

// TableName 表名
func (l *Location) TableName() string {
	return "locations"
}

// IsOperational 网点是否可运营
func (l *Location) IsOperational() bool {
	return l.Active && !l.TemporarilyClosed
}

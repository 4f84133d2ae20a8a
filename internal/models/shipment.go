package models

import "time"

// Shipment 发货单模型 - 归属于唯一租户的成组发货业务
// 客户自助创建的发货单携带originating customer id与取件网点，
// 经员工审核后进入OPEN；员工直接创建的发货单跳过审核
type Shipment struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;index"`
	Number   string `json:"number" gorm:"unique;not null;size:100;index"` // 公开发货单号
	Status   string `json:"status" gorm:"not null;size:30;index"`

	// 客户自助路径字段（员工路径下为空）
	CustomerID       *uint `json:"customer_id" gorm:"index"` // 发起客户，仅自助路径
	PickupLocationID *uint `json:"pickup_location_id"`       // 取件网点，仅自助路径

	// 审核/驳回记录
	ValidatedBy     *uint      `json:"validated_by"`
	ValidatedAt     *time.Time `json:"validated_at"`
	ValidationNotes string     `json:"validation_notes" gorm:"size:255"`
	RejectedBy      *uint      `json:"rejected_by"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectReason    string     `json:"reject_reason" gorm:"size:255"`

	ConfirmedAt *time.Time `json:"confirmed_at"`

	// 地址与联系人字段，仅OPEN（员工）或PENDING_VALIDATION（客户）可修改
	SenderName      string `json:"sender_name" gorm:"size:100"`
	SenderPhone     string `json:"sender_phone" gorm:"size:20"`
	SenderAddress   string `json:"sender_address" gorm:"size:255"`
	ReceiverName    string `json:"receiver_name" gorm:"size:100"`
	ReceiverPhone   string `json:"receiver_phone" gorm:"size:20"`
	ReceiverAddress string `json:"receiver_address" gorm:"size:255"`

	Tenant  *Tenant  `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Parcels []Parcel `gorm:"foreignKey:ShipmentID" json:"parcels,omitempty"`
}

// TableName 表名
func (s *Shipment) TableName() string {
	return "shipments"
}

// 发货单状态常量
const (
	ShipmentStatusPendingValidation = "PENDING_VALIDATION" // 仅客户自助路径可达
	ShipmentStatusOpen              = "OPEN"
	ShipmentStatusConfirmed         = "CONFIRMED" // 终态
	ShipmentStatusRejected          = "REJECTED"  // 终态
)

// IsCustomerOriginated 是否客户自助创建
func (s *Shipment) IsCustomerOriginated() bool {
	return s.CustomerID != nil
}

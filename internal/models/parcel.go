package models

import (
	"time"

	"gorm.io/datatypes"
)

// Parcel 包裹模型 - 独立追踪的物理包裹
// 租户ID在创建时从发货单复制，之后永不偏离
type Parcel struct {
	BaseModel
	TenantID       uint   `json:"tenant_id" gorm:"not null;index"`
	ShipmentID     uint   `json:"shipment_id" gorm:"not null;index"`
	TrackingNumber string `json:"tracking_number" gorm:"unique;not null;size:30;index"` // 公开运单号，含校验字符
	Status         string `json:"status" gorm:"not null;size:30;index"`

	// 核心标识字段，仅REGISTERED状态可修改
	WeightKg         float64        `json:"weight_kg"`
	Dimensions       datatypes.JSON `json:"dimensions" gorm:"type:json"` // {"length_cm":..,"width_cm":..,"height_cm":..}
	Description      string         `json:"description" gorm:"size:255"`
	DeclaredValue    float64        `json:"declared_value"`
	ReceiverOverride string         `json:"receiver_override" gorm:"size:255"` // 指定收件人覆盖，可为空

	// 扫描轨迹
	CurrentLocationID *uint      `json:"current_location_id"`
	LastScanAt        *time.Time `json:"last_scan_at"`

	// 终态记录
	DeliveredAt   *time.Time `json:"delivered_at"` // 仅在成功终态设置
	ReceivedBy    string     `json:"received_by" gorm:"size:100"`
	FailureReason string     `json:"failure_reason" gorm:"size:255"`

	Shipment *Shipment `gorm:"foreignKey:ShipmentID" json:"shipment,omitempty"`
}

// TableName 表名
func (p *Parcel) TableName() string {
	return "parcels"
}

// 包裹状态常量
const (
	ParcelStatusRegistered     = "REGISTERED"
	ParcelStatusInTransit      = "IN_TRANSIT"
	ParcelStatusInSorting      = "IN_SORTING"
	ParcelStatusOutForDelivery = "OUT_FOR_DELIVERY"
	ParcelStatusDelivered      = "DELIVERED"
	ParcelStatusFailed         = "FAILED"
	ParcelStatusReturned       = "RETURNED"
)

// IsTerminal 是否处于不再流转的终态
func (p *Parcel) IsTerminal() bool {
	return p.Status == ParcelStatusDelivered || p.Status == ParcelStatusReturned
}

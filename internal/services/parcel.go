package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parcelhub/internal/database"
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/internal/policy"
	"parcelhub/internal/tenantctx"
	"parcelhub/pkg/errors"
	"parcelhub/pkg/events"
	"parcelhub/pkg/idgen"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ParcelService struct {
	db        *gorm.DB
	publisher EventPublisher
	policy    policy.ParcelPolicy
}

func NewParcelService() *ParcelService {
	return &ParcelService{
		db:        database.GetDB(),
		publisher: database.GetEventPublisher(),
	}
}

// ========== 请求结构 ==========

// ParcelDetailsInput 包裹核心标识字段，仅REGISTERED状态可修改
type ParcelDetailsInput struct {
	WeightKg         float64        `json:"weight_kg"`
	Dimensions       datatypes.JSON `json:"dimensions"`
	Description      string         `json:"description"`
	DeclaredValue    float64        `json:"declared_value"`
	ReceiverOverride string         `json:"receiver_override"`
}

func (in *ParcelDetailsInput) apply(p *models.Parcel) {
	p.WeightKg = in.WeightKg
	if in.Dimensions != nil {
		p.Dimensions = in.Dimensions
	}
	p.Description = in.Description
	p.DeclaredValue = in.DeclaredValue
	p.ReceiverOverride = in.ReceiverOverride
}

// ========== 状态机守卫（无I/O，集中可审计） ==========

// parcelTransitions 包裹状态机的完整邻接表
// REGISTERED → IN_TRANSIT → IN_SORTING → OUT_FOR_DELIVERY → {DELIVERED, FAILED}，
// FAILED → RETURNED；其余任何状态对一律拒绝
var parcelTransitions = map[string][]string{
	models.ParcelStatusRegistered:     {models.ParcelStatusInTransit},
	models.ParcelStatusInTransit:      {models.ParcelStatusInSorting},
	models.ParcelStatusInSorting:      {models.ParcelStatusOutForDelivery},
	models.ParcelStatusOutForDelivery: {models.ParcelStatusDelivered, models.ParcelStatusFailed},
	models.ParcelStatusFailed:         {models.ParcelStatusReturned},
}

// checkParcelTransition 邻接表守卫
func checkParcelTransition(current, target string) error {
	for _, next := range parcelTransitions[current] {
		if next == target {
			return nil
		}
	}
	return errors.NewInvalidStateTransition("parcel", current, target)
}

// checkParcelGenericUpdate 通用状态推进守卫
// DELIVERED和FAILED必须走专用操作，保证送达时间/签收人/失败原因不会被跳过
func checkParcelGenericUpdate(current, target string) error {
	if target == models.ParcelStatusDelivered || target == models.ParcelStatusFailed {
		return errors.NewInvalidStateTransitionWithReason("parcel", current, target,
			"请使用投递成功/投递失败专用操作")
	}
	return checkParcelTransition(current, target)
}

// checkParcelDetailsModify 核心字段修改守卫：仅REGISTERED状态
func checkParcelDetailsModify(p *models.Parcel) error {
	if p.Status != models.ParcelStatusRegistered {
		return errors.NewInvalidStateTransitionWithReason("parcel", p.Status,
			p.Status, "登记后包裹核心字段不可修改")
	}
	return nil
}

// ========== 创建 ==========

// Create 在发货单下登记包裹
// 仅发货单OPEN状态可以添加；租户ID从发货单复制，之后永不偏离
func (s *ParcelService) Create(ctx context.Context, actor *identity.Actor, shipmentID uint, details *ParcelDetailsInput) (*models.Parcel, error) {
	var shipment models.Shipment
	if err := s.db.Scopes(tenantctx.Scope(ctx)).First(&shipment, shipmentID).Error; err != nil {
		return nil, err
	}

	shipmentPolicy := policy.ShipmentPolicy{}
	if err := shipmentPolicy.ValidateModify(actor, &shipment); err != nil {
		return nil, err
	}
	if err := checkShipmentAddParcel(&shipment); err != nil {
		return nil, err
	}
	// 租户在发货单OPEN之后被暂停/停用的情况下，不允许继续登记包裹
	if _, err := requireOperatingTenant(s.db, shipment.TenantID); err != nil {
		return nil, err
	}

	trackingNumber, err := idgen.GenerateTrackingNumber(func(candidate string) (bool, error) {
		var count int64
		err := s.db.Model(&models.Parcel{}).Where("tracking_number = ?", candidate).Count(&count).Error
		return count > 0, err
	})
	if err != nil {
		return nil, err
	}

	parcel := &models.Parcel{
		TenantID:       shipment.TenantID,
		ShipmentID:     shipment.ID,
		TrackingNumber: trackingNumber,
		Status:         models.ParcelStatusRegistered,
	}
	if details != nil {
		details.apply(parcel)
	}

	if err := s.db.Create(parcel).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeParcelRegistered,
		TenantID:      parcel.TenantID,
		AggregateType: "parcel",
		AggregateID:   parcel.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"tracking_number": parcel.TrackingNumber, "shipment_id": shipment.ID},
	})
	return parcel, nil
}

// ========== 状态转换 ==========

// UpdateStatus 通用状态推进，可选记录当前网点并刷新扫描时间
// 目标状态必须在邻接表内；DELIVERED/FAILED必须走专用操作
func (s *ParcelService) UpdateStatus(ctx context.Context, actor *identity.Actor, id uint, target string, currentLocationID *uint) (*models.Parcel, error) {
	parcel, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateUpdateStatus(actor, parcel); err != nil {
		return nil, err
	}
	if err := checkParcelGenericUpdate(parcel.Status, target); err != nil {
		return nil, err
	}

	if currentLocationID != nil {
		var location models.Location
		if err := s.db.First(&location, *currentLocationID).Error; err != nil {
			return nil, err
		}
		if location.TenantID != parcel.TenantID {
			return nil, errors.NewTenantMismatch("location", parcel.TenantID, location.TenantID)
		}
		parcel.CurrentLocationID = currentLocationID
	}

	now := time.Now()
	previous := parcel.Status
	parcel.Status = target
	parcel.LastScanAt = &now

	if err := s.db.Save(parcel).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeParcelStatusMoved,
		TenantID:      parcel.TenantID,
		AggregateType: "parcel",
		AggregateID:   parcel.ID,
		ActorID:       actor.UserID,
		Payload: map[string]interface{}{
			"tracking_number": parcel.TrackingNumber,
			"from":            previous,
			"to":              target,
		},
	})
	return parcel, nil
}

// MarkDelivered 投递成功，记录送达时间与签收人，进入DELIVERED终态
func (s *ParcelService) MarkDelivered(ctx context.Context, actor *identity.Actor, id uint, receivedBy string) (*models.Parcel, error) {
	parcel, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateUpdateStatus(actor, parcel); err != nil {
		return nil, err
	}
	if err := checkParcelTransition(parcel.Status, models.ParcelStatusDelivered); err != nil {
		return nil, err
	}

	now := time.Now()
	parcel.Status = models.ParcelStatusDelivered
	parcel.DeliveredAt = &now
	parcel.ReceivedBy = receivedBy
	parcel.LastScanAt = &now

	if err := s.db.Save(parcel).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeParcelDelivered,
		TenantID:      parcel.TenantID,
		AggregateType: "parcel",
		AggregateID:   parcel.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"tracking_number": parcel.TrackingNumber, "received_by": receivedBy},
	})
	return parcel, nil
}

// MarkFailed 投递失败，需要非空原因，不设置送达时间
func (s *ParcelService) MarkFailed(ctx context.Context, actor *identity.Actor, id uint, reason string) (*models.Parcel, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("投递失败必须提供原因")
	}

	parcel, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateUpdateStatus(actor, parcel); err != nil {
		return nil, err
	}
	if err := checkParcelTransition(parcel.Status, models.ParcelStatusFailed); err != nil {
		return nil, err
	}

	now := time.Now()
	parcel.Status = models.ParcelStatusFailed
	parcel.FailureReason = reason
	parcel.LastScanAt = &now

	if err := s.db.Save(parcel).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeParcelFailed,
		TenantID:      parcel.TenantID,
		AggregateType: "parcel",
		AggregateID:   parcel.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"tracking_number": parcel.TrackingNumber, "reason": reason},
	})
	return parcel, nil
}

// ========== 修改与查询 ==========

// UpdateDetails 修改包裹核心标识字段，仅REGISTERED状态
func (s *ParcelService) UpdateDetails(ctx context.Context, actor *identity.Actor, id uint, details *ParcelDetailsInput) (*models.Parcel, error) {
	parcel, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, parcel); err != nil {
		return nil, err
	}
	if err := checkParcelDetailsModify(parcel); err != nil {
		return nil, err
	}

	details.apply(parcel)
	if err := s.db.Save(parcel).Error; err != nil {
		return nil, err
	}
	return parcel, nil
}

// GetByID 加载包裹（预加载发货单用于客户所有权判定）并做读取授权
func (s *ParcelService) GetByID(ctx context.Context, actor *identity.Actor, id uint) (*models.Parcel, error) {
	var parcel models.Parcel
	err := s.db.Scopes(tenantctx.Scope(ctx)).Preload("Shipment").First(&parcel, id).Error
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateRead(actor, &parcel); err != nil {
		return nil, err
	}
	return &parcel, nil
}

// GetByShipment 列出发货单下的所有包裹
func (s *ParcelService) GetByShipment(ctx context.Context, actor *identity.Actor, shipmentID uint) ([]*models.Parcel, error) {
	var shipment models.Shipment
	if err := s.db.Scopes(tenantctx.Scope(ctx)).First(&shipment, shipmentID).Error; err != nil {
		return nil, err
	}
	shipmentPolicy := policy.ShipmentPolicy{}
	if err := shipmentPolicy.ValidateRead(actor, &shipment); err != nil {
		return nil, err
	}

	var parcels []*models.Parcel
	err := s.db.Where("shipment_id = ?", shipmentID).Order("created_at").Find(&parcels).Error
	return parcels, err
}

// PublicTracking 公开运单查询返回的脱敏信息
type PublicTracking struct {
	TrackingNumber string     `json:"tracking_number"`
	Status         string     `json:"status"`
	LastScanAt     *time.Time `json:"last_scan_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// TrackByNumber 公开运单查询，无需登录
// 先做格式与校验字符检查，明显非法的运单号不触发数据库查询
func (s *ParcelService) TrackByNumber(ctx context.Context, trackingNumber string) (*PublicTracking, error) {
	if !idgen.ValidateTrackingNumber(trackingNumber) {
		return nil, fmt.Errorf("运单号格式错误")
	}

	var parcel models.Parcel
	if err := s.db.Where("tracking_number = ?", trackingNumber).First(&parcel).Error; err != nil {
		return nil, err
	}

	return &PublicTracking{
		TrackingNumber: parcel.TrackingNumber,
		Status:         parcel.Status,
		LastScanAt:     parcel.LastScanAt,
		DeliveredAt:    parcel.DeliveredAt,
	}, nil
}

// load 按租户作用域加载包裹
func (s *ParcelService) load(ctx context.Context, id uint) (*models.Parcel, error) {
	var parcel models.Parcel
	err := s.db.Scopes(tenantctx.Scope(ctx)).First(&parcel, id).Error
	if err != nil {
		return nil, err
	}
	return &parcel, nil
}

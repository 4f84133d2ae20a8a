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
	"parcelhub/pkg/pagination"

	"gorm.io/gorm"
)

type ShipmentService struct {
	db        *gorm.DB
	publisher EventPublisher
	policy    policy.ShipmentPolicy
}

func NewShipmentService() *ShipmentService {
	return &ShipmentService{
		db:        database.GetDB(),
		publisher: database.GetEventPublisher(),
	}
}

// ========== 请求结构 ==========

// ShipmentContactInput 地址与联系人字段
type ShipmentContactInput struct {
	SenderName      string `json:"sender_name"`
	SenderPhone     string `json:"sender_phone"`
	SenderAddress   string `json:"sender_address"`
	ReceiverName    string `json:"receiver_name"`
	ReceiverPhone   string `json:"receiver_phone"`
	ReceiverAddress string `json:"receiver_address"`
}

func (in *ShipmentContactInput) apply(s *models.Shipment) {
	s.SenderName = in.SenderName
	s.SenderPhone = in.SenderPhone
	s.SenderAddress = in.SenderAddress
	s.ReceiverName = in.ReceiverName
	s.ReceiverPhone = in.ReceiverPhone
	s.ReceiverAddress = in.ReceiverAddress
}

// ========== 状态机守卫（无I/O，集中可审计） ==========

// checkShipmentValidate 审核守卫：仅客户自助创建且处于待审核的发货单
func checkShipmentValidate(s *models.Shipment) error {
	if s.Status != models.ShipmentStatusPendingValidation {
		return errors.NewInvalidStateTransition("shipment", s.Status, models.ShipmentStatusOpen)
	}
	if !s.IsCustomerOriginated() {
		return errors.NewInvalidStateTransitionWithReason("shipment", s.Status,
			models.ShipmentStatusOpen, "仅客户自助创建的发货单需要审核")
	}
	return nil
}

// checkShipmentReject 驳回守卫：仅客户自助创建且处于待审核的发货单
func checkShipmentReject(s *models.Shipment) error {
	if s.Status != models.ShipmentStatusPendingValidation {
		return errors.NewInvalidStateTransition("shipment", s.Status, models.ShipmentStatusRejected)
	}
	if !s.IsCustomerOriginated() {
		return errors.NewInvalidStateTransitionWithReason("shipment", s.Status,
			models.ShipmentStatusRejected, "仅客户自助创建的发货单可以驳回")
	}
	return nil
}

// checkShipmentConfirm 确认守卫：OPEN且至少有一个包裹
func checkShipmentConfirm(s *models.Shipment, parcelCount int64) error {
	if s.Status != models.ShipmentStatusOpen {
		return errors.NewInvalidStateTransition("shipment", s.Status, models.ShipmentStatusConfirmed)
	}
	if parcelCount < 1 {
		return errors.NewInvalidStateTransitionWithReason("shipment", s.Status,
			models.ShipmentStatusConfirmed, "空发货单不能确认")
	}
	return nil
}

// checkShipmentAddParcel 添加包裹守卫：仅OPEN状态
func checkShipmentAddParcel(s *models.Shipment) error {
	if s.Status != models.ShipmentStatusOpen {
		return errors.NewInvalidStateTransitionWithReason("shipment", s.Status,
			s.Status, "仅OPEN状态可以添加包裹")
	}
	return nil
}

// checkShipmentEmployeeModify 员工路径修改守卫：仅OPEN状态
func checkShipmentEmployeeModify(s *models.Shipment) error {
	if s.Status != models.ShipmentStatusOpen {
		return errors.NewInvalidStateTransitionWithReason("shipment", s.Status,
			s.Status, "其他状态下地址与联系人字段不可修改")
	}
	return nil
}

// checkShipmentCustomerModify 客户路径修改守卫：仅待审核状态
func checkShipmentCustomerModify(s *models.Shipment) error {
	if s.Status != models.ShipmentStatusPendingValidation {
		return errors.NewInvalidStateTransitionWithReason("shipment", s.Status,
			s.Status, "审核后客户不能再修改发货单")
	}
	return nil
}

// ========== 创建 ==========

// CreateByEmployee 员工路径创建发货单，直接进入OPEN，无审核步骤
func (s *ShipmentService) CreateByEmployee(ctx context.Context, actor *identity.Actor, tenantID uint, contact *ShipmentContactInput) (*models.Shipment, error) {
	if !actor.IsPlatformAdmin() {
		if !actor.IsTenantEmployee() {
			return nil, errors.NewAccessDenied("shipment", "create", "仅租户员工或平台管理员")
		}
		// 员工只能在自己的租户内创建
		tenantID = actor.TenantID
	}

	tenant, err := requireOperatingTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		TenantID: tenant.ID,
		Number:   idgen.GenerateShipmentNumber(tenant.Code),
		Status:   models.ShipmentStatusOpen,
	}
	if contact != nil {
		contact.apply(shipment)
	}

	if err := s.db.Create(shipment).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeShipmentCreated,
		TenantID:      shipment.TenantID,
		AggregateType: "shipment",
		AggregateID:   shipment.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"number": shipment.Number, "status": shipment.Status},
	})
	return shipment, nil
}

// CreateByCustomer 客户自助路径创建发货单，进入PENDING_VALIDATION
// 必须关联发起客户与取件网点；取件网点必须属于同一租户且可运营
func (s *ShipmentService) CreateByCustomer(ctx context.Context, actor *identity.Actor, tenantID, pickupLocationID uint, contact *ShipmentContactInput) (*models.Shipment, error) {
	if !actor.IsCustomer() {
		return nil, errors.NewAccessDenied("shipment", "create", "自助路径仅限客户")
	}

	tenant, err := requireOperatingTenant(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var location models.Location
	if err := s.db.First(&location, pickupLocationID).Error; err != nil {
		return nil, err
	}
	if location.TenantID != tenant.ID {
		return nil, errors.NewTenantMismatch("pickup_location", tenant.ID, location.TenantID)
	}
	if !location.IsOperational() {
		return nil, fmt.Errorf("取件网点当前不可运营")
	}

	customerID := actor.UserID
	shipment := &models.Shipment{
		TenantID:         tenant.ID,
		Number:           idgen.GenerateShipmentNumber(tenant.Code),
		Status:           models.ShipmentStatusPendingValidation,
		CustomerID:       &customerID,
		PickupLocationID: &pickupLocationID,
	}
	if contact != nil {
		contact.apply(shipment)
	}

	if err := s.db.Create(shipment).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeShipmentCreated,
		TenantID:      shipment.TenantID,
		AggregateType: "shipment",
		AggregateID:   shipment.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"number": shipment.Number, "status": shipment.Status},
	})
	return shipment, nil
}

// ========== 状态转换 ==========

// Validate 审核通过客户自助创建的发货单，记录审核员工与时间，进入OPEN
func (s *ShipmentService) Validate(ctx context.Context, actor *identity.Actor, id uint, notes string) (*models.Shipment, error) {
	shipment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateTransition(actor, shipment); err != nil {
		return nil, err
	}
	if err := checkShipmentValidate(shipment); err != nil {
		return nil, err
	}

	now := time.Now()
	employeeID := actor.UserID
	shipment.Status = models.ShipmentStatusOpen
	shipment.ValidatedBy = &employeeID
	shipment.ValidatedAt = &now
	shipment.ValidationNotes = notes

	if err := s.db.Save(shipment).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeShipmentValidated,
		TenantID:      shipment.TenantID,
		AggregateType: "shipment",
		AggregateID:   shipment.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"number": shipment.Number, "notes": notes},
	})
	return shipment, nil
}

// Reject 驳回客户自助创建的发货单，需要非空原因，进入REJECTED终态
func (s *ShipmentService) Reject(ctx context.Context, actor *identity.Actor, id uint, reason string) (*models.Shipment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("驳回发货单必须提供原因")
	}

	shipment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateTransition(actor, shipment); err != nil {
		return nil, err
	}
	if err := checkShipmentReject(shipment); err != nil {
		return nil, err
	}

	now := time.Now()
	employeeID := actor.UserID
	shipment.Status = models.ShipmentStatusRejected
	shipment.RejectedBy = &employeeID
	shipment.RejectedAt = &now
	shipment.RejectReason = reason

	if err := s.db.Save(shipment).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeShipmentRejected,
		TenantID:      shipment.TenantID,
		AggregateType: "shipment",
		AggregateID:   shipment.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"number": shipment.Number, "reason": reason},
	})
	return shipment, nil
}

// Confirm 确认发货单，进入CONFIRMED终态并记录确认时间
// 空发货单不能确认
func (s *ShipmentService) Confirm(ctx context.Context, actor *identity.Actor, id uint) (*models.Shipment, error) {
	shipment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateTransition(actor, shipment); err != nil {
		return nil, err
	}

	var parcelCount int64
	if err := s.db.Model(&models.Parcel{}).Where("shipment_id = ?", shipment.ID).Count(&parcelCount).Error; err != nil {
		return nil, err
	}
	if err := checkShipmentConfirm(shipment, parcelCount); err != nil {
		return nil, err
	}

	now := time.Now()
	shipment.Status = models.ShipmentStatusConfirmed
	shipment.ConfirmedAt = &now

	if err := s.db.Save(shipment).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeShipmentConfirmed,
		TenantID:      shipment.TenantID,
		AggregateType: "shipment",
		AggregateID:   shipment.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"number": shipment.Number, "parcel_count": parcelCount},
	})
	return shipment, nil
}

// ========== 修改 ==========

// Update 员工路径修改地址与联系人字段，仅OPEN状态
func (s *ShipmentService) Update(ctx context.Context, actor *identity.Actor, id uint, contact *ShipmentContactInput) (*models.Shipment, error) {
	shipment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, shipment); err != nil {
		return nil, err
	}
	if err := checkShipmentEmployeeModify(shipment); err != nil {
		return nil, err
	}

	contact.apply(shipment)
	if err := s.db.Save(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

// UpdateByCustomer 客户路径修改地址与联系人字段，仅PENDING_VALIDATION状态
func (s *ShipmentService) UpdateByCustomer(ctx context.Context, actor *identity.Actor, id uint, contact *ShipmentContactInput) (*models.Shipment, error) {
	shipment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateCustomerModify(actor, shipment); err != nil {
		return nil, err
	}
	if err := checkShipmentCustomerModify(shipment); err != nil {
		return nil, err
	}

	contact.apply(shipment)
	if err := s.db.Save(shipment).Error; err != nil {
		return nil, err
	}
	return shipment, nil
}

// ========== 查询 ==========

// GetByID 加载发货单并做读取授权
func (s *ShipmentService) GetByID(ctx context.Context, actor *identity.Actor, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.db.Scopes(tenantctx.Scope(ctx)).Preload("Parcels").First(&shipment, id).Error
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateRead(actor, &shipment); err != nil {
		return nil, err
	}
	return &shipment, nil
}

// GetWithFiltersAndPage 组合查询（分页版本），查询自动套用租户作用域
func (s *ShipmentService) GetWithFiltersAndPage(ctx context.Context, actor *identity.Actor, status string, params *pagination.PageParams) ([]*models.Shipment, int64, error) {
	var shipments []*models.Shipment
	var total int64

	query := s.db.Model(&models.Shipment{}).Scopes(tenantctx.Scope(ctx))

	// 客户只能看到自己发起的发货单
	if actor.IsCustomer() {
		query = query.Where("customer_id = ?", actor.UserID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(params.GetOffset()).Limit(params.GetLimit()).Find(&shipments).Error; err != nil {
		return nil, 0, err
	}

	return shipments, total, nil
}

// ========== 后台过期处理 ==========

// RejectExpiredPending 驳回超期未审核的客户发货单（由调度器触发，系统身份）
// 返回处理条数
func (s *ShipmentService) RejectExpiredPending(ctx context.Context, maxAgeDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	var expired []*models.Shipment
	err := s.db.Where("status = ? AND created_at < ?", models.ShipmentStatusPendingValidation, cutoff).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	rejected := 0
	for _, shipment := range expired {
		if err := checkShipmentReject(shipment); err != nil {
			continue
		}

		now := time.Now()
		shipment.Status = models.ShipmentStatusRejected
		shipment.RejectedAt = &now
		shipment.RejectReason = fmt.Sprintf("超过%d天未审核，系统自动驳回", maxAgeDays)

		if err := s.db.Save(shipment).Error; err != nil {
			return rejected, err
		}
		rejected++

		publishEvent(ctx, s.publisher, &events.DomainEvent{
			Type:          events.TypeShipmentRejected,
			TenantID:      shipment.TenantID,
			AggregateType: "shipment",
			AggregateID:   shipment.ID,
			Payload:       map[string]interface{}{"number": shipment.Number, "reason": shipment.RejectReason},
		})
	}
	return rejected, nil
}

// load 按租户作用域加载发货单
func (s *ShipmentService) load(ctx context.Context, id uint) (*models.Shipment, error) {
	var shipment models.Shipment
	err := s.db.Scopes(tenantctx.Scope(ctx)).First(&shipment, id).Error
	if err != nil {
		return nil, err
	}
	return &shipment, nil
}

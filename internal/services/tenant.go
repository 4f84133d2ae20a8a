package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"parcelhub/internal/database"
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/internal/policy"
	"parcelhub/pkg/events"
	"parcelhub/pkg/idgen"
	"parcelhub/pkg/logger"
	"parcelhub/pkg/pagination"

	"gorm.io/gorm"
)

// EventPublisher 领域事件发布接口
// 每次成功的状态转换后发布恰好一条事件；发布失败记录日志，不阻断业务
type EventPublisher interface {
	Publish(ctx context.Context, event *events.DomainEvent) error
}

// publishEvent 发布事件的统一出口
func publishEvent(ctx context.Context, publisher EventPublisher, event *events.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.GetLogger().Errorf("发布领域事件失败 type=%s aggregate=%d: %v",
			event.Type, event.AggregateID, err)
	}
}

type TenantService struct {
	db        *gorm.DB
	publisher EventPublisher
	policy    policy.TenantPolicy
}

// TenantStats 租户统计信息
type TenantStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
}

func NewTenantService() *TenantService {
	return &TenantService{
		db:        database.GetDB(),
		publisher: database.GetEventPublisher(),
	}
}

// Create 创建租户（平台级操作）
// 租户代码由生成器产生：当年计数+1，有界重试后回退到时间戳+随机数
func (s *TenantService) Create(ctx context.Context, actor *identity.Actor, name string) (*models.Tenant, error) {
	if err := s.policy.ValidateAdminister(actor); err != nil {
		return nil, err
	}
	if !s.ValidateName(name) {
		return nil, fmt.Errorf("租户名称长度必须在2-100个字符之间")
	}

	code, err := idgen.GenerateTenantCode(
		func(year int) (int64, error) {
			var count int64
			err := s.db.Model(&models.Tenant{}).
				Where("EXTRACT(YEAR FROM created_at) = ?", year).
				Count(&count).Error
			return count, err
		},
		func(candidate string) (bool, error) {
			var count int64
			err := s.db.Model(&models.Tenant{}).Where("code = ?", candidate).Count(&count).Error
			return count > 0, err
		},
	)
	if err != nil {
		return nil, err
	}

	tenant := &models.Tenant{
		Name:   name,
		Code:   code,
		Status: models.TenantStatusActive,
	}

	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

// GetByID 根据ID获取租户
func (s *TenantService) GetByID(ctx context.Context, actor *identity.Actor, id uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}
	if err := s.policy.ValidateRead(actor, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// GetWithFiltersAndPage 组合查询（分页版本，平台级操作）
func (s *TenantService) GetWithFiltersAndPage(ctx context.Context, actor *identity.Actor, status, keyword string, params *pagination.PageParams) ([]*models.Tenant, int64, error) {
	if err := s.policy.ValidateAdminister(actor); err != nil {
		return nil, 0, err
	}

	var tenants []*models.Tenant
	var total int64

	query := s.db.Model(&models.Tenant{})

	// 添加过滤条件
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("name LIKE ? OR code LIKE ?", searchPattern, searchPattern)
	}

	// 计算总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	if err := query.Offset(params.GetOffset()).Limit(params.GetLimit()).Find(&tenants).Error; err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Update 更新租户资料
func (s *TenantService) Update(ctx context.Context, actor *identity.Actor, id uint, name string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, &tenant); err != nil {
		return nil, err
	}
	if !s.ValidateName(name) {
		return nil, fmt.Errorf("租户名称长度必须在2-100个字符之间")
	}

	tenant.Name = name
	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Activate 激活租户（平台级操作）
func (s *TenantService) Activate(ctx context.Context, actor *identity.Actor, id uint) (*models.Tenant, error) {
	return s.setStatus(ctx, actor, id, models.TenantStatusActive)
}

// Deactivate 停用租户（平台级操作）
func (s *TenantService) Deactivate(ctx context.Context, actor *identity.Actor, id uint) (*models.Tenant, error) {
	return s.setStatus(ctx, actor, id, models.TenantStatusInactive)
}

func (s *TenantService) setStatus(ctx context.Context, actor *identity.Actor, id uint, status string) (*models.Tenant, error) {
	if err := s.policy.ValidateAdminister(actor); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}

	tenant.Status = status
	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Suspend 暂停租户（平台级操作），需要非空原因
// 暂停的租户不能发起新业务，但与停用相互独立
func (s *TenantService) Suspend(ctx context.Context, actor *identity.Actor, id uint, reason string) (*models.Tenant, error) {
	if err := s.policy.ValidateAdminister(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("暂停租户必须提供原因")
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}

	tenant.Suspended = true
	tenant.SuspendReason = reason
	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeTenantSuspended,
		TenantID:      tenant.ID,
		AggregateType: "tenant",
		AggregateID:   tenant.ID,
		ActorID:       actor.UserID,
		Payload:       map[string]interface{}{"reason": reason},
	})
	return &tenant, nil
}

// Resume 恢复暂停的租户（平台级操作）
func (s *TenantService) Resume(ctx context.Context, actor *identity.Actor, id uint) (*models.Tenant, error) {
	if err := s.policy.ValidateAdminister(actor); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, err
	}

	tenant.Suspended = false
	tenant.SuspendReason = ""
	if err := s.db.Save(&tenant).Error; err != nil {
		return nil, err
	}

	publishEvent(ctx, s.publisher, &events.DomainEvent{
		Type:          events.TypeTenantResumed,
		TenantID:      tenant.ID,
		AggregateType: "tenant",
		AggregateID:   tenant.ID,
		ActorID:       actor.UserID,
	})
	return &tenant, nil
}

// GetStats 获取租户统计（平台级操作）
func (s *TenantService) GetStats(ctx context.Context, actor *identity.Actor) (*TenantStats, error) {
	if err := s.policy.ValidateAdminister(actor); err != nil {
		return nil, err
	}

	stats := &TenantStats{}
	s.db.Model(&models.Tenant{}).Count(&stats.Total)
	s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusActive).Count(&stats.Active)
	s.db.Model(&models.Tenant{}).Where("status = ?", models.TenantStatusInactive).Count(&stats.Inactive)
	s.db.Model(&models.Tenant{}).Where("suspended = ?", true).Count(&stats.Suspended)
	return stats, nil
}

// requireOperatingTenant 加载租户并要求其可以发起新业务
// checkTenantOperating 暂停或停用的租户不能发起新业务（含发货单创建、包裹登记）
func checkTenantOperating(tenant *models.Tenant) error {
	if tenant.Suspended {
		return fmt.Errorf("租户已被暂停，不能发起新业务: %s", tenant.SuspendReason)
	}
	if tenant.Status != models.TenantStatusActive {
		return fmt.Errorf("租户已停用，不能发起新业务")
	}
	return nil
}

func requireOperatingTenant(db *gorm.DB, tenantID uint) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := db.First(&tenant, tenantID).Error; err != nil {
		return nil, err
	}
	if err := checkTenantOperating(&tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// ValidateName 验证租户名称（按unicode字符数计算）
func (s *TenantService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 100
}

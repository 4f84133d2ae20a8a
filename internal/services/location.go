package services

import (
	"context"
	"fmt"
	"strings"

	"parcelhub/internal/database"
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/internal/policy"
	"parcelhub/internal/tenantctx"
	"parcelhub/pkg/errors"

	"gorm.io/gorm"
)

type LocationService struct {
	db     *gorm.DB
	policy policy.LocationPolicy
}

func NewLocationService() *LocationService {
	return &LocationService{
		db: database.GetDB(),
	}
}

// CreateLocationInput 创建网点参数
type CreateLocationInput struct {
	TenantID uint   `json:"tenant_id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

// Create 在租户下创建网点
func (s *LocationService) Create(ctx context.Context, actor *identity.Actor, input *CreateLocationInput) (*models.Location, error) {
	// 租户员工只能在自己的租户下创建
	tenantID := input.TenantID
	if actor.IsTenantEmployee() {
		tenantID = actor.TenantID
	}

	if err := s.policy.ValidateCreate(actor, tenantID); err != nil {
		return nil, err
	}
	if _, err := requireOperatingTenant(s.db, tenantID); err != nil {
		return nil, err
	}

	location := &models.Location{
		TenantID: tenantID,
		Name:     input.Name,
		Address:  input.Address,
		City:     input.City,
		Active:   true,
	}
	if err := s.db.Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// GetByID 获取网点
func (s *LocationService) GetByID(ctx context.Context, actor *identity.Actor, id uint) (*models.Location, error) {
	location, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateRead(actor, location); err != nil {
		return nil, err
	}
	return location, nil
}

// GetByTenant 列出租户下的网点
func (s *LocationService) GetByTenant(ctx context.Context, actor *identity.Actor, tenantID uint) ([]*models.Location, error) {
	if !actor.IsPlatformAdmin() {
		if !actor.IsTenantEmployee() || actor.TenantID != tenantID {
			return nil, errors.NewAccessDenied("location", "list", "")
		}
	}

	var locations []*models.Location
	err := s.db.Where("tenant_id = ?", tenantID).Order("name").Find(&locations).Error
	return locations, err
}

// Update 更新网点基本信息
func (s *LocationService) Update(ctx context.Context, actor *identity.Actor, id uint, name, address, city string) (*models.Location, error) {
	location, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, location); err != nil {
		return nil, err
	}

	location.Name = name
	location.Address = address
	location.City = city
	if err := s.db.Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// Activate 激活网点
func (s *LocationService) Activate(ctx context.Context, actor *identity.Actor, id uint) (*models.Location, error) {
	return s.setActive(ctx, actor, id, true)
}

// Deactivate 停用网点
func (s *LocationService) Deactivate(ctx context.Context, actor *identity.Actor, id uint) (*models.Location, error) {
	return s.setActive(ctx, actor, id, false)
}

func (s *LocationService) setActive(ctx context.Context, actor *identity.Actor, id uint, active bool) (*models.Location, error) {
	location, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, location); err != nil {
		return nil, err
	}

	location.Active = active
	if err := s.db.Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// Close 临时关闭网点，必须给出非空白原因
func (s *LocationService) Close(ctx context.Context, actor *identity.Actor, id uint, reason string) (*models.Location, error) {
	location, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, location); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("关闭网点必须填写原因")
	}

	location.TemporarilyClosed = true
	location.CloseReason = reason
	if err := s.db.Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// Reopen 重新开放网点
// 关闭后恢复必须走显式重开，仅重新激活不会清除关闭状态
func (s *LocationService) Reopen(ctx context.Context, actor *identity.Actor, id uint) (*models.Location, error) {
	location, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, location); err != nil {
		return nil, err
	}

	location.TemporarilyClosed = false
	location.CloseReason = ""
	if err := s.db.Save(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

func (s *LocationService) load(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	err := s.db.Scopes(tenantctx.Scope(ctx)).First(&location, id).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

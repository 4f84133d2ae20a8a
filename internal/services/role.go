package services

import (
	"context"
	"fmt"
	"regexp"

	"parcelhub/internal/database"
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/internal/policy"

	"gorm.io/gorm"
)

type RoleService struct {
	db     *gorm.DB
	policy policy.RolePolicy
}

func NewRoleService() *RoleService {
	return &RoleService{
		db: database.GetDB(),
	}
}

// 角色代码格式：大写字母段，下划线分隔
var roleCodePattern = regexp.MustCompile(`^[A-Z]+(_[A-Z]+)*$`)

// CreateRoleInput 创建角色参数
type CreateRoleInput struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Scope       string `json:"scope"`
}

func validRoleScope(scope string) bool {
	switch scope {
	case models.RoleScopeTenant, models.RoleScopePlatform, models.RoleScopeCustomer:
		return true
	}
	return false
}

// Create 创建角色定义（仅平台管理员）
func (s *RoleService) Create(ctx context.Context, actor *identity.Actor, input *CreateRoleInput) (*models.Role, error) {
	if err := s.policy.ValidateManage(actor); err != nil {
		return nil, err
	}
	if !roleCodePattern.MatchString(input.Code) {
		return nil, fmt.Errorf("角色代码格式不合法，只允许大写字母和下划线: %s", input.Code)
	}
	if !validRoleScope(input.Scope) {
		return nil, fmt.Errorf("未知的角色作用域: %s", input.Scope)
	}

	var count int64
	s.db.Model(&models.Role{}).Where("code = ?", input.Code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("角色代码已存在: %s", input.Code)
	}

	role := &models.Role{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		Scope:       input.Scope,
		Status:      models.RoleStatusActive,
	}
	if err := s.db.Create(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// Update 更新角色定义
// 代码和作用域不可变，只允许改名称、描述和状态
func (s *RoleService) Update(ctx context.Context, actor *identity.Actor, id uint, name, description, status string) (*models.Role, error) {
	if err := s.policy.ValidateManage(actor); err != nil {
		return nil, err
	}

	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		return nil, err
	}

	if status != models.RoleStatusActive && status != models.RoleStatusInactive {
		return nil, fmt.Errorf("未知的角色状态: %s", status)
	}

	role.Name = name
	role.Description = description
	role.Status = status
	if err := s.db.Save(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Delete 删除角色定义
// 仍被用户持有的角色不允许删除
func (s *RoleService) Delete(ctx context.Context, actor *identity.Actor, id uint) error {
	if err := s.policy.ValidateManage(actor); err != nil {
		return err
	}

	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.UserRole{}).Where("role_id = ?", id).Count(&count)
	if count > 0 {
		return fmt.Errorf("角色仍被 %d 个用户持有，不能删除", count)
	}

	return s.db.Delete(&role).Error
}

// GetByID 获取角色
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.First(&role, id).Error
	return &role, err
}

// GetByCode 按代码获取角色
func (s *RoleService) GetByCode(code string) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("code = ?", code).First(&role).Error
	return &role, err
}

// List 列出角色，可按作用域过滤
func (s *RoleService) List(scope string) ([]*models.Role, error) {
	var roles []*models.Role
	query := s.db.Model(&models.Role{})
	if scope != "" {
		query = query.Where("scope = ?", scope)
	}
	err := query.Order("code").Find(&roles).Error
	return roles, err
}

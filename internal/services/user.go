package services

import (
	"context"
	"fmt"
	"time"

	"parcelhub/internal/database"
	"parcelhub/internal/identity"
	"parcelhub/internal/models"
	"parcelhub/internal/policy"
	"parcelhub/pkg/errors"
	"parcelhub/pkg/pagination"

	"gorm.io/gorm"
)

type UserService struct {
	db         *gorm.DB
	policy     policy.UserPolicy
	rolePolicy policy.RolePolicy
}

func NewUserService() *UserService {
	return &UserService{
		db: database.GetDB(),
	}
}

// CreateUserInput 创建用户参数
type CreateUserInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	ActorKind string `json:"actor_kind"`
	TenantID  uint   `json:"tenant_id"`
}

// checkUserKindConsistency 用户的actor类型与租户ID一致性检查
// 与Actor描述相同的不变量：租户员工当且仅当携带租户ID
func checkUserKindConsistency(kind string, tenantID uint) error {
	switch kind {
	case identity.KindTenantEmployee:
		if tenantID == 0 {
			return errors.NewMalformedIdentity("租户员工必须归属一个租户")
		}
	case identity.KindCustomer, identity.KindPlatformAdmin:
		if tenantID != 0 {
			return errors.NewMalformedIdentity("非租户员工不允许归属租户")
		}
	default:
		return errors.NewMalformedIdentity("未知的actor类型: " + kind)
	}
	return nil
}

// Create 创建用户（管理路径）
func (s *UserService) Create(ctx context.Context, actor *identity.Actor, input *CreateUserInput) (*models.User, error) {
	if err := s.policy.ValidateCreate(actor, input.ActorKind, input.TenantID); err != nil {
		return nil, err
	}
	if err := checkUserKindConsistency(input.ActorKind, input.TenantID); err != nil {
		return nil, err
	}

	// 租户员工必须挂在可运营的租户下
	if input.ActorKind == identity.KindTenantEmployee {
		if _, err := requireOperatingTenant(s.db, input.TenantID); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		Username:  input.Username,
		Email:     input.Email,
		Name:      input.Name,
		ActorKind: input.ActorKind,
		TenantID:  input.TenantID,
		Status:    models.UserStatusActive,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterCustomer 客户自助注册，无需登录
func (s *UserService) RegisterCustomer(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	user := &models.User{
		Username:  input.Username,
		Email:     input.Email,
		Name:      input.Name,
		ActorKind: identity.KindCustomer,
		Status:    models.UserStatusActive,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID 根据ID获取用户（含角色）并做读取授权
func (s *UserService) GetByID(ctx context.Context, actor *identity.Actor, id uint) (*models.User, error) {
	user, err := s.loadWithRoles(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateRead(actor, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername 根据用户名获取用户（登录路径，无授权检查）
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").Where("username = ?", username).First(&user).Error
	return &user, err
}

// Authenticate 验证用户名密码，成功后刷新最后登录时间
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("用户名或密码错误")
	}
	if !user.CheckPassword(password) {
		return nil, fmt.Errorf("用户名或密码错误")
	}
	if user.Status != models.UserStatusActive {
		return nil, fmt.Errorf("用户已被禁用")
	}

	now := time.Now()
	user.LastLoginAt = &now
	s.db.Model(user).Update("last_login_at", now)

	return user, nil
}

// GetByTenantWithPage 分页获取租户内的用户
func (s *UserService) GetByTenantWithPage(ctx context.Context, actor *identity.Actor, tenantID uint, params *pagination.PageParams) ([]*models.User, int64, error) {
	// 租户员工只能列出自己租户的用户
	if !actor.IsPlatformAdmin() {
		if !actor.IsTenantEmployee() || actor.TenantID != tenantID {
			return nil, 0, errors.NewAccessDenied("user", "list", "")
		}
	}

	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Roles").Offset(params.GetOffset()).Limit(params.GetLimit()).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update 更新用户资料
func (s *UserService) Update(ctx context.Context, actor *identity.Actor, id uint, name string, phone *string) (*models.User, error) {
	user, err := s.loadWithRoles(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, user); err != nil {
		return nil, err
	}

	user.Name = name
	user.Phone = phone
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Activate 激活用户
func (s *UserService) Activate(ctx context.Context, actor *identity.Actor, id uint) (*models.User, error) {
	user, err := s.loadWithRoles(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateModify(actor, user); err != nil {
		return nil, err
	}

	user.Status = models.UserStatusActive
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate 停用用户
// 任何人都不能通过自助路径停用自己
func (s *UserService) Deactivate(ctx context.Context, actor *identity.Actor, id uint) (*models.User, error) {
	user, err := s.loadWithRoles(id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateDeactivate(actor, user); err != nil {
		return nil, err
	}

	user.Status = models.UserStatusInactive
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ========== 角色分配 ==========

// AssignRole 为用户分配角色
// 策略检查（作用域匹配、管理员要求）在任何持久化写入之前完成
func (s *UserService) AssignRole(ctx context.Context, actor *identity.Actor, userID, roleID uint) error {
	user, err := s.loadWithRoles(userID)
	if err != nil {
		return err
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return err
	}
	if !role.IsActive() {
		return fmt.Errorf("角色已停用，不能分配")
	}

	if err := s.rolePolicy.ValidateAssign(actor, &role, user); err != nil {
		return err
	}

	if user.HasRoleCode(role.Code) {
		return fmt.Errorf("用户已持有该角色")
	}

	userRole := &models.UserRole{
		UserID:    user.ID,
		RoleID:    role.ID,
		CreatedBy: actor.UserID,
	}
	return s.db.Create(userRole).Error
}

// RemoveRole 移除用户的角色
// 任何人都不能移除自己的角色
func (s *UserService) RemoveRole(ctx context.Context, actor *identity.Actor, userID, roleID uint) error {
	user, err := s.loadWithRoles(userID)
	if err != nil {
		return err
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return err
	}

	if err := s.rolePolicy.ValidateUnassign(actor, &role, user); err != nil {
		return err
	}

	return s.db.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRole{}).Error
}

// GetUserRoles 获取用户的角色列表
func (s *UserService) GetUserRoles(ctx context.Context, actor *identity.Actor, userID uint) ([]models.Role, error) {
	user, err := s.loadWithRoles(userID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateRead(actor, user); err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// loadWithRoles 加载用户并预加载角色
func (s *UserService) loadWithRoles(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Roles").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

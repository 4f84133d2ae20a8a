package handlers

import (
	"errors"
	"strconv"

	"parcelhub/internal/middleware"
	"parcelhub/internal/services"
	"parcelhub/pkg/pagination"
	"parcelhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Name      string `json:"name" binding:"required"`
	ActorKind string `json:"actor_kind" binding:"required"`
	TenantID  uint   `json:"tenant_id"`
}

type UpdateUserRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone *string `json:"phone"`
}

type AssignRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.service.Create(c.Request.Context(), middleware.GetActor(c), &services.CreateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		ActorKind: req.ActorKind,
		TenantID:  req.TenantID,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			response.BadRequest(c, "用户名或邮箱已存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, user)
}

// GetByID 获取用户
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, user)
}

// GetByTenant 分页列出租户内的用户
func (h *UserHandler) GetByTenant(c *gin.Context) {
	tenantID, err := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	pageParams := pagination.ParsePageParams(c)

	users, total, err := h.service.GetByTenantWithPage(c.Request.Context(), middleware.GetActor(c),
		uint(tenantID), pageParams)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// Update 更新用户资料
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), uint(id), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, user)
}

// Activate 激活用户
func (h *UserHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	user, err := h.service.Activate(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "用户激活成功", user)
}

// Deactivate 停用用户
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	user, err := h.service.Deactivate(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "用户停用成功", user)
}

// AssignRole 分配角色
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.service.AssignRole(c.Request.Context(), middleware.GetActor(c), uint(id), req.RoleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户或角色不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色分配成功", nil)
}

// RemoveRole 移除角色
func (h *UserHandler) RemoveRole(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	roleID, err := strconv.ParseUint(c.Param("role_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "角色ID格式错误")
		return
	}

	if err := h.service.RemoveRole(c.Request.Context(), middleware.GetActor(c), uint(id), uint(roleID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户或角色不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色移除成功", nil)
}

// GetRoles 获取用户的角色列表
func (h *UserHandler) GetRoles(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	roles, err := h.service.GetUserRoles(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "用户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, roles)
}

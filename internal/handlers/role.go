package handlers

import (
	"errors"
	"strconv"
	"strings"

	"parcelhub/internal/middleware"
	"parcelhub/internal/services"
	"parcelhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateRoleRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Scope       string `json:"scope" binding:"required"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required"`
}

type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{
		service: service,
	}
}

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	role, err := h.service.Create(c.Request.Context(), middleware.GetActor(c), &services.CreateRoleInput{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Scope:       req.Scope,
	})
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "格式不合法") || strings.Contains(errMsg, "已存在") ||
			strings.Contains(errMsg, "作用域") {
			response.BadRequest(c, errMsg)
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, role)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	role, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), uint(id),
		req.Name, req.Description, req.Status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		if strings.Contains(err.Error(), "角色状态") {
			response.BadRequest(c, err.Error())
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.GetActor(c), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		if strings.Contains(err.Error(), "不能删除") {
			response.Conflict(c, err.Error())
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色删除成功", nil)
}

// GetByID 获取角色
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	role, err := h.service.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "角色不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, role)
}

// List 列出角色
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.service.List(c.Query("scope"))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, roles)
}

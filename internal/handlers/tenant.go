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

// CreateTenantRequest 请求结构体
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateTenantRequest struct {
	Name string `json:"name" binding:"required"`
}

type SuspendTenantRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type TenantHandler struct {
	service *services.TenantService
}

func NewTenantHandler(service *services.TenantService) *TenantHandler {
	return &TenantHandler{
		service: service,
	}
}

// Create 创建租户
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	actor := middleware.GetActor(c)
	tenant, err := h.service.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		if !h.service.ValidateName(req.Name) {
			response.BadRequest(c, err.Error())
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, tenant)
}

// GetByID 获取租户
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.GetByID(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, tenant)
}

// GetAll 分页列出租户
func (h *TenantHandler) GetAll(c *gin.Context) {
	// 解析分页参数
	pageParams := pagination.ParsePageParams(c)

	// 支持按状态筛选、关键词搜索
	status := c.Query("status")
	keyword := c.Query("keyword")

	tenants, total, err := h.service.GetWithFiltersAndPage(c.Request.Context(), middleware.GetActor(c),
		status, keyword, pageParams)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams, total)
	response.SuccessWithPage(c, tenants, pageInfo)
}

// Update 更新租户
func (h *TenantHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	tenant, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), uint(id), req.Name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		if !h.service.ValidateName(req.Name) {
			response.BadRequest(c, err.Error())
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, tenant)
}

// Activate 激活租户
func (h *TenantHandler) Activate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.Activate(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租户激活成功", tenant)
}

// Deactivate 停用租户
func (h *TenantHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.Deactivate(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租户停用成功", tenant)
}

// Suspend 暂停租户
func (h *TenantHandler) Suspend(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req SuspendTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "暂停租户必须填写原因")
		return
	}

	tenant, err := h.service.Suspend(c.Request.Context(), middleware.GetActor(c), uint(id), req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租户暂停成功", tenant)
}

// Resume 恢复租户
func (h *TenantHandler) Resume(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	tenant, err := h.service.Resume(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "租户恢复成功", tenant)
}

// GetStats 获取租户统计
func (h *TenantHandler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.Success(c, stats)
}

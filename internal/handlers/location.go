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

type CreateLocationRequest struct {
	TenantID uint   `json:"tenant_id"`
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	City     string `json:"city"`
}

type UpdateLocationRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type CloseLocationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type LocationHandler struct {
	service *services.LocationService
}

func NewLocationHandler(service *services.LocationService) *LocationHandler {
	return &LocationHandler{
		service: service,
	}
}

// Create 创建网点
func (h *LocationHandler) Create(c *gin.Context) {
	var req CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	location, err := h.service.Create(c.Request.Context(), middleware.GetActor(c), &services.CreateLocationInput{
		TenantID: req.TenantID,
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, location)
}

// GetByID 获取网点
func (h *LocationHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	location, err := h.service.GetByID(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "网点不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, location)
}

// GetByTenant 列出租户下的网点
func (h *LocationHandler) GetByTenant(c *gin.Context) {
	tenantID, err := strconv.ParseUint(c.Param("tenant_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "租户ID格式错误")
		return
	}

	locations, err := h.service.GetByTenant(c.Request.Context(), middleware.GetActor(c), uint(tenantID))
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.Success(c, locations)
}

// Update 更新网点
func (h *LocationHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	location, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), uint(id),
		req.Name, req.Address, req.City)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "网点不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, location)
}

// Activate 激活网点
func (h *LocationHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate 停用网点
func (h *LocationHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *LocationHandler) setActive(c *gin.Context, active bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var location interface{}
	if active {
		location, err = h.service.Activate(c.Request.Context(), middleware.GetActor(c), uint(id))
	} else {
		location, err = h.service.Deactivate(c.Request.Context(), middleware.GetActor(c), uint(id))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "网点不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, location)
}

// Close 临时关闭网点
func (h *LocationHandler) Close(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req CloseLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "关闭网点必须填写原因")
		return
	}

	location, err := h.service.Close(c.Request.Context(), middleware.GetActor(c), uint(id), req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "网点不存在")
			return
		}
		if strings.Contains(err.Error(), "必须填写原因") {
			response.BadRequest(c, err.Error())
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "网点已关闭", location)
}

// Reopen 重新开放网点
func (h *LocationHandler) Reopen(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	location, err := h.service.Reopen(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "网点不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "网点已重新开放", location)
}

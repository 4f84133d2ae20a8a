package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"parcelhub/internal/middleware"
	"parcelhub/internal/services"
	"parcelhub/pkg/pagination"
	"parcelhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type ShipmentContactRequest struct {
	SenderName      string `json:"sender_name" binding:"required"`
	SenderPhone     string `json:"sender_phone" binding:"required"`
	SenderAddress   string `json:"sender_address" binding:"required"`
	ReceiverName    string `json:"receiver_name" binding:"required"`
	ReceiverPhone   string `json:"receiver_phone" binding:"required"`
	ReceiverAddress string `json:"receiver_address" binding:"required"`
}

func (r *ShipmentContactRequest) toInput() *services.ShipmentContactInput {
	return &services.ShipmentContactInput{
		SenderName:      r.SenderName,
		SenderPhone:     r.SenderPhone,
		SenderAddress:   r.SenderAddress,
		ReceiverName:    r.ReceiverName,
		ReceiverPhone:   r.ReceiverPhone,
		ReceiverAddress: r.ReceiverAddress,
	}
}

type CreateShipmentRequest struct {
	TenantID uint `json:"tenant_id"`
	ShipmentContactRequest
}

type CustomerCreateShipmentRequest struct {
	TenantID         uint `json:"tenant_id" binding:"required"`
	PickupLocationID uint `json:"pickup_location_id" binding:"required"`
	ShipmentContactRequest
}

type ValidateShipmentRequest struct {
	Notes string `json:"notes"`
}

type RejectShipmentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ShipmentHandler struct {
	service *services.ShipmentService
}

func NewShipmentHandler(service *services.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{
		service: service,
	}
}

// Create 员工路径创建发货单
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	shipment, err := h.service.CreateByEmployee(c.Request.Context(), middleware.GetActor(c),
		req.TenantID, req.toInput())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, shipment)
}

// CreateByCustomer 客户自助下单，进入待审核
func (h *ShipmentHandler) CreateByCustomer(c *gin.Context) {
	var req CustomerCreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 解析验证错误，提供更友好的提示
		if validationErr, ok := err.(validator.ValidationErrors); ok {
			errorMsg := "参数验证失败"
			for _, fieldErr := range validationErr {
				switch fieldErr.Field() {
				case "TenantID":
					errorMsg = "必须指定承运租户"
				case "PickupLocationID":
					errorMsg = "必须指定取件网点"
				default:
					errorMsg = fmt.Sprintf("字段 %s 验证失败", fieldErr.Field())
				}
				break // 只返回第一个错误
			}
			response.BadRequest(c, errorMsg)
			return
		}
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	shipment, err := h.service.CreateByCustomer(c.Request.Context(), middleware.GetActor(c),
		req.TenantID, req.PickupLocationID, req.toInput())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "租户或网点不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, shipment)
}

// GetByID 获取发货单（含包裹列表）
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	shipment, err := h.service.GetByID(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, shipment)
}

// GetAll 分页列出发货单
func (h *ShipmentHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")

	shipments, total, err := h.service.GetWithFiltersAndPage(c.Request.Context(), middleware.GetActor(c),
		status, pageParams)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams, total)
	response.SuccessWithPage(c, shipments, pageInfo)
}

// Validate 审核通过，待审核 -> OPEN
func (h *ShipmentHandler) Validate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req ValidateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "参数错误")
		return
	}

	shipment, err := h.service.Validate(c.Request.Context(), middleware.GetActor(c), uint(id), req.Notes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "审核通过", shipment)
}

// Reject 驳回，待审核 -> REJECTED
func (h *ShipmentHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req RejectShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "驳回必须填写原因")
		return
	}

	shipment, err := h.service.Reject(c.Request.Context(), middleware.GetActor(c), uint(id), req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已驳回", shipment)
}

// Confirm 确认发货单，OPEN -> CONFIRMED
func (h *ShipmentHandler) Confirm(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	shipment, err := h.service.Confirm(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "发货单确认成功", shipment)
}

// Update 员工路径更新地址与联系人字段
func (h *ShipmentHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req ShipmentContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	shipment, err := h.service.Update(c.Request.Context(), middleware.GetActor(c), uint(id), req.toInput())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, shipment)
}

// UpdateByCustomer 客户路径更新，仅待审核状态
func (h *ShipmentHandler) UpdateByCustomer(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req ShipmentContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	shipment, err := h.service.UpdateByCustomer(c.Request.Context(), middleware.GetActor(c), uint(id), req.toInput())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, shipment)
}

package handlers

import (
	"errors"
	"strconv"
	"strings"

	"parcelhub/internal/middleware"
	"parcelhub/internal/services"
	"parcelhub/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ParcelDetailsRequest struct {
	WeightKg         float64        `json:"weight_kg"`
	Dimensions       datatypes.JSON `json:"dimensions"`
	Description      string         `json:"description"`
	DeclaredValue    float64        `json:"declared_value"`
	ReceiverOverride string         `json:"receiver_override"`
}

func (r *ParcelDetailsRequest) toInput() *services.ParcelDetailsInput {
	return &services.ParcelDetailsInput{
		WeightKg:         r.WeightKg,
		Dimensions:       r.Dimensions,
		Description:      r.Description,
		DeclaredValue:    r.DeclaredValue,
		ReceiverOverride: r.ReceiverOverride,
	}
}

type CreateParcelRequest struct {
	ShipmentID uint `json:"shipment_id" binding:"required"`
	ParcelDetailsRequest
}

type UpdateParcelStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	CurrentLocationID *uint  `json:"current_location_id"`
}

type MarkDeliveredRequest struct {
	ReceivedBy string `json:"received_by"`
}

type MarkFailedRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ParcelHandler struct {
	service *services.ParcelService
}

func NewParcelHandler(service *services.ParcelService) *ParcelHandler {
	return &ParcelHandler{
		service: service,
	}
}

// Create 在发货单下登记包裹
func (h *ParcelHandler) Create(c *gin.Context) {
	var req CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	parcel, err := h.service.Create(c.Request.Context(), middleware.GetActor(c),
		req.ShipmentID, req.ParcelDetailsRequest.toInput())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, parcel)
}

// GetByID 获取包裹
func (h *ParcelHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	parcel, err := h.service.GetByID(c.Request.Context(), middleware.GetActor(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "包裹不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, parcel)
}

// GetByShipment 列出发货单下的包裹
func (h *ParcelHandler) GetByShipment(c *gin.Context) {
	shipmentID, err := strconv.ParseUint(c.Param("shipment_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "发货单ID格式错误")
		return
	}

	parcels, err := h.service.GetByShipment(c.Request.Context(), middleware.GetActor(c), uint(shipmentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "发货单不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, parcels)
}

// UpdateStatus 通用状态推进
func (h *ParcelHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req UpdateParcelStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	parcel, err := h.service.UpdateStatus(c.Request.Context(), middleware.GetActor(c),
		uint(id), req.Status, req.CurrentLocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "包裹或网点不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, parcel)
}

// MarkDelivered 投递成功
func (h *ParcelHandler) MarkDelivered(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req MarkDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "参数错误")
		return
	}

	parcel, err := h.service.MarkDelivered(c.Request.Context(), middleware.GetActor(c), uint(id), req.ReceivedBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "包裹不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "投递成功", parcel)
}

// MarkFailed 投递失败
func (h *ParcelHandler) MarkFailed(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req MarkFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "投递失败必须提供原因")
		return
	}

	parcel, err := h.service.MarkFailed(c.Request.Context(), middleware.GetActor(c), uint(id), req.Reason)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "包裹不存在")
			return
		}
		if strings.Contains(err.Error(), "必须提供原因") {
			response.BadRequest(c, err.Error())
			return
		}
		response.DomainError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已登记投递失败", parcel)
}

// UpdateDetails 修改包裹核心字段，仅REGISTERED状态
func (h *ParcelHandler) UpdateDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var req ParcelDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	parcel, err := h.service.UpdateDetails(c.Request.Context(), middleware.GetActor(c), uint(id), req.toInput())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "包裹不存在")
			return
		}
		response.DomainError(c, err)
		return
	}

	response.Success(c, parcel)
}

// Track 公开运单查询，无需登录
func (h *ParcelHandler) Track(c *gin.Context) {
	trackingNumber := c.Param("tracking_number")

	tracking, err := h.service.TrackByNumber(c.Request.Context(), trackingNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "运单不存在")
			return
		}
		if strings.Contains(err.Error(), "格式错误") {
			response.BadRequest(c, err.Error())
			return
		}
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, tracking)
}

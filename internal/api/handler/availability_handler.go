package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// AvailabilityHandler 可用时间模块 HTTP 处理器
type AvailabilityHandler struct {
	availabilitySvc service.AvailabilityService
}

// NewAvailabilityHandler 创建 AvailabilityHandler
func NewAvailabilityHandler(availabilitySvc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilitySvc: availabilitySvc}
}

// CreateRule 创建每周可用时间规则（导师）
// POST /api/v1/availability/rules
func (h *AvailabilityHandler) CreateRule(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateWeeklyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.CreateRule(c.Request.Context(), tutorID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeRange) {
			response.BadRequest(c, 15002, "时间区间无效")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// ListRules 查看本人全部规则（导师）
// GET /api/v1/availability/rules
func (h *AvailabilityHandler) ListRules(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.availabilitySvc.ListRules(c.Request.Context(), tutorID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdateRule 更新规则（导师）
// PUT /api/v1/availability/rules/:id
func (h *AvailabilityHandler) UpdateRule(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateWeeklyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.UpdateRule(c.Request.Context(), tutorID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRuleNotFound):
			response.NotFound(c, 15001, "规则不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权操作该规则")
		case errors.Is(err, service.ErrInvalidTimeRange):
			response.BadRequest(c, 15002, "时间区间无效")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// DeleteRule 删除规则（导师，软删除）
// DELETE /api/v1/availability/rules/:id
func (h *AvailabilityHandler) DeleteRule(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.availabilitySvc.DeleteRule(c.Request.Context(), tutorID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrRuleNotFound):
			response.NotFound(c, 15001, "规则不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权操作该规则")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// CreateException 创建日期例外（导师）
// POST /api/v1/availability/exceptions
func (h *AvailabilityHandler) CreateException(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.CreateException(c.Request.Context(), tutorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 15003, "日期格式无效")
		case errors.Is(err, service.ErrInvalidTimeRange):
			response.BadRequest(c, 15002, "时间区间无效")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// ListExceptions 查看本人日期例外（导师，今天起）
// GET /api/v1/availability/exceptions
func (h *AvailabilityHandler) ListExceptions(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.availabilitySvc.ListExceptions(c.Request.Context(), tutorID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// DeleteException 删除日期例外（导师）
// DELETE /api/v1/availability/exceptions/:id
func (h *AvailabilityHandler) DeleteException(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.availabilitySvc.DeleteException(c.Request.Context(), tutorID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrExceptionNotFound):
			response.NotFound(c, 15004, "日期例外不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权操作该例外")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// ResolveSlots 查询导师某日可预约时段（公开给已登录用户）
// GET /api/v1/tutors/:id/slots?date=2026-09-15
func (h *AvailabilityHandler) ResolveSlots(c *gin.Context) {
	var req dto.ResolveSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.availabilitySvc.ResolveSlots(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 15003, "日期超出可预约范围")
		case errors.Is(err, service.ErrTutorNotFound):
			response.NotFound(c, 14001, "导师不存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// BookingHandler 预约模块 HTTP 处理器
type BookingHandler struct {
	bookingSvc service.BookingService
}

// NewBookingHandler 创建 BookingHandler
func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// Create 学生提交预约申请
// POST /api/v1/requests
func (h *BookingHandler) Create(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateLessonRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.CreateRequest(c.Request.Context(), studentID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 15003, "日期超出可预约范围")
		case errors.Is(err, service.ErrTutorNotFound):
			response.NotFound(c, 14001, "导师不存在")
		case errors.Is(err, service.ErrUnknownSubject):
			response.BadRequest(c, 14002, "科目不存在或已停用")
		case errors.Is(err, service.ErrSelfBooking):
			response.BadRequest(c, 16003, "不能预约自己的课程")
		case errors.Is(err, service.ErrSlotUnavailable):
			response.BadRequest(c, 16001, "该时段不在导师可用时间内")
		case errors.Is(err, service.ErrSlotTaken):
			response.Conflict(c, 16002, "该时段已被占用")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// Respond 导师接受/拒绝预约申请
// POST /api/v1/requests/:id/respond
func (h *BookingHandler) Respond(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RespondLessonRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.bookingSvc.Respond(c.Request.Context(), tutorID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 16004, "预约申请不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权处理该申请")
		case errors.Is(err, service.ErrRequestClosed):
			response.Conflict(c, 16005, "申请已处理")
		case errors.Is(err, service.ErrSlotTaken):
			response.Conflict(c, 16002, "该时段已被占用")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Cancel 学生取消待处理的预约申请
// POST /api/v1/requests/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.bookingSvc.Cancel(c.Request.Context(), studentID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 16004, "预约申请不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权取消该申请")
		case errors.Is(err, service.ErrRequestClosed):
			response.Conflict(c, 16005, "申请已处理")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Get 查看申请详情（仅双方）
// GET /api/v1/requests/:id
func (h *BookingHandler) Get(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.bookingSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			response.NotFound(c, 16004, "预约申请不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权查看该申请")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// List 按角色查看本人相关申请
// GET /api/v1/requests
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.LessonRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var result *dto.LessonRequestListResponse
	var err error
	if role == model.RoleTutor {
		result, err = h.bookingSvc.ListForTutor(c.Request.Context(), userID, &req)
	} else {
		result, err = h.bookingSvc.ListForStudent(c.Request.Context(), userID, &req)
	}
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

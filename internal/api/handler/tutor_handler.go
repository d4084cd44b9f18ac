package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// TutorHandler 导师模块 HTTP 处理器
type TutorHandler struct {
	tutorSvc service.TutorService
}

// NewTutorHandler 创建 TutorHandler
func NewTutorHandler(tutorSvc service.TutorService) *TutorHandler {
	return &TutorHandler{tutorSvc: tutorSvc}
}

// UpsertProfile 创建或更新本人导师档案
// PUT /api/v1/tutors/me/profile
func (h *TutorHandler) UpsertProfile(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpsertTutorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tutorSvc.UpsertProfile(c.Request.Context(), tutorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "仅导师可维护档案")
		case errors.Is(err, service.ErrUnknownSubject):
			response.BadRequest(c, 14002, "科目不存在或已停用")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// GetProfile 查看导师档案
// GET /api/v1/tutors/:id
func (h *TutorHandler) GetProfile(c *gin.Context) {
	result, err := h.tutorSvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			response.NotFound(c, 14001, "导师档案不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Search 搜索导师（已发布档案）
// GET /api/v1/tutors
func (h *TutorHandler) Search(c *gin.Context) {
	var req dto.TutorSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tutorSvc.Search(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

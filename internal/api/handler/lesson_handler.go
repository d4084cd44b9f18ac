package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// LessonHandler 课程模块 HTTP 处理器
type LessonHandler struct {
	lessonSvc service.LessonService
}

// NewLessonHandler 创建 LessonHandler
func NewLessonHandler(lessonSvc service.LessonService) *LessonHandler {
	return &LessonHandler{lessonSvc: lessonSvc}
}

// Get 查看课程详情（仅双方）
// GET /api/v1/lessons/:id
func (h *LessonHandler) Get(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.lessonSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			response.NotFound(c, 17001, "课程不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权查看该课程")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// UpdateStatus 按状态机更新课程状态
// PATCH /api/v1/lessons/:id/status
func (h *LessonHandler) UpdateStatus(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateLessonStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.lessonSvc.UpdateStatus(c.Request.Context(), callerID, role, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			response.NotFound(c, 17001, "课程不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权执行该操作")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, 17002, "当前状态不允许该迁移")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// List 按角色查看本人课程
// GET /api/v1/lessons
func (h *LessonHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.LessonListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var result *dto.LessonListResponse
	var err error
	if role == model.RoleTutor {
		result, err = h.lessonSvc.ListForTutor(c.Request.Context(), userID, &req)
	} else {
		result, err = h.lessonSvc.ListForStudent(c.Request.Context(), userID, &req)
	}
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			response.BadRequest(c, 15003, "日期格式无效")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// HomeworkHandler 作业模块 HTTP 处理器
type HomeworkHandler struct {
	homeworkSvc service.HomeworkService
}

// NewHomeworkHandler 创建 HomeworkHandler
func NewHomeworkHandler(homeworkSvc service.HomeworkService) *HomeworkHandler {
	return &HomeworkHandler{homeworkSvc: homeworkSvc}
}

// Assign 导师布置作业
// POST /api/v1/homeworks
func (h *HomeworkHandler) Assign(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.homeworkSvc.Assign(c.Request.Context(), tutorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLessonNotFound):
			response.NotFound(c, 17001, "课程不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权为该课程布置作业")
		case errors.Is(err, service.ErrLessonNotOpen):
			response.Conflict(c, 18002, "课程状态不允许布置作业")
		case errors.Is(err, service.ErrInvalidDate):
			response.BadRequest(c, 15003, "日期格式无效")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// Submit 学生提交作业
// POST /api/v1/homeworks/:id/submit
func (h *HomeworkHandler) Submit(c *gin.Context) {
	studentID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.homeworkSvc.Submit(c.Request.Context(), studentID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHomeworkNotFound):
			response.NotFound(c, 18001, "作业不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权提交该作业")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, 18003, "当前状态不允许提交")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Review 导师批改作业
// POST /api/v1/homeworks/:id/review
func (h *HomeworkHandler) Review(c *gin.Context) {
	tutorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.homeworkSvc.Review(c.Request.Context(), tutorID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHomeworkNotFound):
			response.NotFound(c, 18001, "作业不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权批改该作业")
		case errors.Is(err, service.ErrInvalidTransition):
			response.Conflict(c, 18004, "当前状态不允许批改")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Get 查看作业详情（仅双方）
// GET /api/v1/homeworks/:id
func (h *HomeworkHandler) Get(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.homeworkSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHomeworkNotFound):
			response.NotFound(c, 18001, "作业不存在")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, 10003, "无权查看该作业")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// List 按角色查看本人作业
// GET /api/v1/homeworks
func (h *HomeworkHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.HomeworkListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	var result *dto.HomeworkListResponse
	var err error
	if role == model.RoleTutor {
		result, err = h.homeworkSvc.ListForTutor(c.Request.Context(), userID, &req)
	} else {
		result, err = h.homeworkSvc.ListForStudent(c.Request.Context(), userID, &req)
	}
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

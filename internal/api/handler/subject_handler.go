package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// SubjectHandler 科目模块 HTTP 处理器
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler 创建 SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// Create 创建科目（管理员）
// POST /api/v1/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.Create(c.Request.Context(), operatorID, &req)
	if err != nil {
		if errors.Is(err, service.ErrSubjectExists) {
			response.Conflict(c, 13002, "同名科目已存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// List 科目列表（公开，默认仅启用科目）
// GET /api/v1/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	activeOnly := c.DefaultQuery("all", "false") != "true"

	result, err := h.subjectSvc.List(c.Request.Context(), activeOnly)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Update 更新科目（管理员）
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) Update(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.subjectSvc.Update(c.Request.Context(), operatorID, c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectNotFound):
			response.NotFound(c, 13001, "科目不存在")
		case errors.Is(err, service.ErrSubjectExists):
			response.Conflict(c, 13002, "同名科目已存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Delete 删除科目（管理员，软删除）
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.subjectSvc.Delete(c.Request.Context(), operatorID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSubjectNotFound) {
			response.NotFound(c, 13001, "科目不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

package dto

// ── 课程模块 DTO ──

// UpdateLessonStatusRequest 更新课程状态请求
type UpdateLessonStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=confirmed completed cancelled"`
}

// LessonListRequest 课程列表查询参数
type LessonListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	From   string `form:"from"   binding:"omitempty"` // "2026-09-01"
	To     string `form:"to"     binding:"omitempty"`
}

// LessonListResponse 课程列表响应
type LessonListResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Items    []LessonResponse `json:"items"`
}

// LessonResponse 课程信息响应
type LessonResponse struct {
	ID        string        `json:"id"`
	Tutor     *UserBrief    `json:"tutor,omitempty"`
	Student   *UserBrief    `json:"student,omitempty"`
	Subject   *SubjectBrief `json:"subject,omitempty"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

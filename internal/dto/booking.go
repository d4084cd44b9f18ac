package dto

// ── 预约模块 DTO ──

// CreateLessonRequestRequest 学生创建预约申请请求
type CreateLessonRequestRequest struct {
	TutorID   string `json:"tutor_id"   binding:"required,uuid"`
	SubjectID string `json:"subject_id" binding:"required,uuid"`
	Date      string `json:"date"       binding:"required"`                // "2026-09-15"
	StartTime string `json:"start_time" binding:"required,datetime=15:04"` // "09:00"
	EndTime   string `json:"end_time"   binding:"required,datetime=15:04"` // "10:00"
	Message   string `json:"message"    binding:"omitempty,max=1000"`
}

// RespondLessonRequestRequest 导师响应预约申请请求
type RespondLessonRequestRequest struct {
	Accept   bool   `json:"accept"`
	Response string `json:"response" binding:"omitempty,max=1000"`
}

// LessonRequestListRequest 预约申请列表查询参数
type LessonRequestListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected cancelled"`
}

// LessonRequestListResponse 预约申请列表响应
type LessonRequestListResponse struct {
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Items    []LessonRequestResponse `json:"items"`
}

// LessonRequestResponse 预约申请响应
type LessonRequestResponse struct {
	ID            string        `json:"id"`
	Tutor         *UserBrief    `json:"tutor,omitempty"`
	Student       *UserBrief    `json:"student,omitempty"`
	Subject       *SubjectBrief `json:"subject,omitempty"`
	Date          string        `json:"date"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	Message       string        `json:"message,omitempty"`
	Status        string        `json:"status"`
	TutorResponse string        `json:"tutor_response,omitempty"`
	LessonID      *string       `json:"lesson_id,omitempty"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}

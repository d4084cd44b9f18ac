package dto

// ── 作业模块 DTO ──

// AssignHomeworkRequest 导师布置作业请求
type AssignHomeworkRequest struct {
	LessonID    string `json:"lesson_id"   binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	DueDate     string `json:"due_date"    binding:"omitempty"` // "2026-09-20"
}

// SubmitHomeworkRequest 学生提交作业请求
type SubmitHomeworkRequest struct {
	Answer string `json:"answer" binding:"required,max=20000"`
}

// ReviewHomeworkRequest 导师批改作业请求
type ReviewHomeworkRequest struct {
	Grade    int    `json:"grade"    binding:"min=1,max=5"`
	Feedback string `json:"feedback" binding:"omitempty,max=1000"`
}

// HomeworkListRequest 作业列表查询参数
type HomeworkListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=assigned submitted reviewed"`
}

// HomeworkListResponse 作业列表响应
type HomeworkListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Items    []HomeworkResponse `json:"items"`
}

// HomeworkResponse 作业信息响应
type HomeworkResponse struct {
	ID          string     `json:"id"`
	LessonID    string     `json:"lesson_id"`
	Tutor       *UserBrief `json:"tutor,omitempty"`
	Student     *UserBrief `json:"student,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	Status      string     `json:"status"`
	Answer      string     `json:"answer,omitempty"`
	Grade       *int       `json:"grade,omitempty"`
	Feedback    string     `json:"feedback,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

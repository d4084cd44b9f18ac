package dto

// ── 导师模块 DTO ──

// UpsertTutorProfileRequest 创建/更新导师档案请求
type UpsertTutorProfileRequest struct {
	Bio         *string  `json:"bio"          binding:"omitempty,max=2000"`
	HourlyRate  *float64 `json:"hourly_rate"  binding:"omitempty,min=0"`
	City        *string  `json:"city"         binding:"omitempty,max=100"`
	SlotMinutes *int     `json:"slot_minutes" binding:"omitempty,min=15,max=240"`
	IsPublished *bool    `json:"is_published"`
	SubjectIDs  []string `json:"subject_ids"  binding:"omitempty,dive,uuid"`
}

// TutorSearchRequest 导师搜索请求
type TutorSearchRequest struct {
	PaginationRequest
	SubjectID string   `form:"subject_id" binding:"omitempty,uuid"`
	City      string   `form:"city"       binding:"omitempty,max=100"`
	MaxRate   *float64 `form:"max_rate"   binding:"omitempty,min=0"`
	MinRating *float64 `form:"min_rating" binding:"omitempty,min=0,max=5"`
}

// TutorSearchResponse 导师搜索结果
type TutorSearchResponse struct {
	Total    int64                  `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	Items    []TutorProfileResponse `json:"items"`
}

// TutorProfileResponse 导师档案响应
type TutorProfileResponse struct {
	TutorID     string         `json:"tutor_id"`
	Name        string         `json:"name"`
	Bio         string         `json:"bio,omitempty"`
	HourlyRate  float64        `json:"hourly_rate"`
	City        string         `json:"city,omitempty"`
	SlotMinutes int            `json:"slot_minutes"`
	Rating      float64        `json:"rating"`
	IsPublished bool           `json:"is_published"`
	Subjects    []SubjectBrief `json:"subjects"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
}

package dto

// ── 可用时间模块 DTO ──

// CreateWeeklyRuleRequest 创建每周可用时间规则请求
type CreateWeeklyRuleRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time"  binding:"required,datetime=15:04"` // "09:00"
	EndTime   string `json:"end_time"    binding:"required,datetime=15:04"` // "12:00"
}

// UpdateWeeklyRuleRequest 更新每周可用时间规则请求
type UpdateWeeklyRuleRequest struct {
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"  binding:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time"    binding:"omitempty,datetime=15:04"`
	IsActive  *bool   `json:"is_active"`
}

// WeeklyRuleResponse 每周可用时间规则响应
type WeeklyRuleResponse struct {
	ID        string `json:"id"`
	TutorID   string `json:"tutor_id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateExceptionRequest 创建日期例外请求
type CreateExceptionRequest struct {
	Date      string  `json:"date"        binding:"required"` // "2026-09-15"
	IsFullDay bool    `json:"is_full_day"`
	StartTime *string `json:"start_time"  binding:"omitempty,datetime=15:04"` // 部分例外时必填
	EndTime   *string `json:"end_time"    binding:"omitempty,datetime=15:04"`
	Reason    string  `json:"reason"      binding:"omitempty,max=200"`
}

// ExceptionResponse 日期例外响应
type ExceptionResponse struct {
	ID        string  `json:"id"`
	TutorID   string  `json:"tutor_id"`
	Date      string  `json:"date"`
	IsFullDay bool    `json:"is_full_day"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ResolveSlotsRequest 查询可预约时段请求
type ResolveSlotsRequest struct {
	Date string `form:"date" binding:"required"` // "2026-09-15"
}

// TimeSlotResponse 可预约时段（派生数据，不落库）
type TimeSlotResponse struct {
	SlotID      string `json:"slot_id"` // 合成 ID："2026-09-15:09:00"
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

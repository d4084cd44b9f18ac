package model

import "time"

// LessonRequest 预约申请状态
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusRejected  = "rejected"
	RequestStatusCancelled = "cancelled"
)

// requestTransitions 预约申请状态机：pending → accepted/rejected/cancelled，其余均为终态
var requestTransitions = map[string][]string{
	RequestStatusPending: {RequestStatusAccepted, RequestStatusRejected, RequestStatusCancelled},
}

// LessonRequest 预约申请表 — 对应 lesson_requests
// 学生发起；仅导师可接受/拒绝，仅学生可在待处理时取消；进入终态后只读
type LessonRequest struct {
	RequestID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	TutorID            string    `gorm:"type:uuid;not null"                             json:"tutor_id"`
	StudentID          string    `gorm:"type:uuid;not null"                             json:"student_id"`
	SubjectID          string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	RequestedDate      time.Time `gorm:"type:date;not null"                             json:"requested_date"`
	RequestedStartTime string    `gorm:"type:time;not null"                             json:"requested_start_time"`
	RequestedEndTime   string    `gorm:"type:time;not null"                             json:"requested_end_time"`
	Message            string    `gorm:"type:varchar(1000);not null;default:''"         json:"message,omitempty"`
	Status             string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	TutorResponse      string    `gorm:"type:varchar(1000);not null;default:''"         json:"tutor_response,omitempty"`
	LessonID           *string   `gorm:"type:uuid"                                      json:"lesson_id,omitempty"` // 接受后生成的课程
	VersionedModel

	// 关联
	Tutor   *User    `gorm:"foreignKey:TutorID;references:UserID"      json:"tutor,omitempty"`
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"    json:"student,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Lesson  *Lesson  `gorm:"foreignKey:LessonID;references:LessonID"   json:"lesson,omitempty"`
}

// TableName 指定表名
func (LessonRequest) TableName() string { return "lesson_requests" }

// CanTransitionTo 检查申请状态是否可迁移至 target
func (r *LessonRequest) CanTransitionTo(target string) bool {
	for _, s := range requestTransitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// OccupiesTime 申请是否占用导师日历时间（仅待处理申请占位）
func (r *LessonRequest) OccupiesTime() bool {
	return r.Status == RequestStatusPending
}

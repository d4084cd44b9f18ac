package model

import "time"

// Lesson 课程状态
const (
	LessonStatusPending   = "pending"
	LessonStatusConfirmed = "confirmed"
	LessonStatusCompleted = "completed"
	LessonStatusCancelled = "cancelled"
)

// lessonTransitions 课程状态机：pending → confirmed/cancelled，confirmed → completed/cancelled
// completed 与 cancelled 为终态
var lessonTransitions = map[string][]string{
	LessonStatusPending:   {LessonStatusConfirmed, LessonStatusCancelled},
	LessonStatusConfirmed: {LessonStatusCompleted, LessonStatusCancelled},
}

// Lesson 课程表 — 对应 lessons
type Lesson struct {
	LessonID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"lesson_id"`
	TutorID   string    `gorm:"type:uuid;not null"                             json:"tutor_id"`
	StudentID string    `gorm:"type:uuid;not null"                             json:"student_id"`
	SubjectID string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	Date      time.Time `gorm:"type:date;not null"                             json:"date"`
	StartTime string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime   string    `gorm:"type:time;not null"                             json:"end_time"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	VersionedModel

	// 关联
	Tutor   *User    `gorm:"foreignKey:TutorID;references:UserID"       json:"tutor,omitempty"`
	Student *User    `gorm:"foreignKey:StudentID;references:UserID"     json:"student,omitempty"`
	Subject *Subject `gorm:"foreignKey:SubjectID;references:SubjectID"  json:"subject,omitempty"`
}

// TableName 指定表名
func (Lesson) TableName() string { return "lessons" }

// CanTransitionTo 检查课程状态是否可迁移至 target
func (l *Lesson) CanTransitionTo(target string) bool {
	for _, s := range lessonTransitions[l.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// OccupiesTime 课程是否占用导师日历时间（取消后不再占用）
func (l *Lesson) OccupiesTime() bool {
	return l.Status != LessonStatusCancelled
}

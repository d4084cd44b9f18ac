package model

import "time"

// Homework 作业状态
const (
	HomeworkStatusAssigned  = "assigned"
	HomeworkStatusSubmitted = "submitted"
	HomeworkStatusReviewed  = "reviewed"
)

// homeworkTransitions 作业状态机：assigned → submitted → reviewed
var homeworkTransitions = map[string][]string{
	HomeworkStatusAssigned:  {HomeworkStatusSubmitted},
	HomeworkStatusSubmitted: {HomeworkStatusReviewed},
}

// Homework 作业表 — 对应 homeworks
type Homework struct {
	HomeworkID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"homework_id"`
	LessonID    string     `gorm:"type:uuid;not null"                             json:"lesson_id"`
	TutorID     string     `gorm:"type:uuid;not null"                             json:"tutor_id"`
	StudentID   string     `gorm:"type:uuid;not null"                             json:"student_id"`
	Title       string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string     `gorm:"type:text;not null;default:''"                  json:"description,omitempty"`
	DueDate     *time.Time `gorm:"type:date"                                      json:"due_date,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'assigned'"   json:"status"`
	Answer      string     `gorm:"type:text;not null;default:''"                  json:"answer,omitempty"`
	Grade       *int       `gorm:"type:smallint"                                  json:"grade,omitempty"`
	Feedback    string     `gorm:"type:varchar(1000);not null;default:''"         json:"feedback,omitempty"`
	VersionedModel

	// 关联
	Lesson  *Lesson `gorm:"foreignKey:LessonID;references:LessonID" json:"lesson,omitempty"`
	Tutor   *User   `gorm:"foreignKey:TutorID;references:UserID"    json:"tutor,omitempty"`
	Student *User   `gorm:"foreignKey:StudentID;references:UserID"  json:"student,omitempty"`
}

// TableName 指定表名
func (Homework) TableName() string { return "homeworks" }

// CanTransitionTo 检查作业状态是否可迁移至 target
func (h *Homework) CanTransitionTo(target string) bool {
	for _, s := range homeworkTransitions[h.Status] {
		if s == target {
			return true
		}
	}
	return false
}

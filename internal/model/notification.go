package model

// 通知类型
const (
	NotificationTypeRequestCreated    = "request_created"
	NotificationTypeRequestAccepted   = "request_accepted"
	NotificationTypeRequestRejected   = "request_rejected"
	NotificationTypeLessonCancelled   = "lesson_cancelled"
	NotificationTypeHomeworkAssigned  = "homework_assigned"
	NotificationTypeHomeworkSubmitted = "homework_submitted"
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string  `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // lesson | lesson_request | homework
	RelatedID      *string `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

package model

import "time"

// WeeklyAvailabilityRule 每周可用时间规则表 — 对应 weekly_availability_rules
// 时间以 "HH:MM" 字符串存储（PostgreSQL time 类型），定宽格式可直接按字典序比较
type WeeklyAvailabilityRule struct {
	RuleID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	TutorID   string `gorm:"type:uuid;not null"                             json:"tutor_id"`
	DayOfWeek int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 0-6（0=周日）
	StartTime string `gorm:"type:time;not null"                             json:"start_time"`  // "09:00"
	EndTime   string `gorm:"type:time;not null"                             json:"end_time"`    // "12:00"
	IsActive  bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Tutor *User `gorm:"foreignKey:TutorID;references:UserID" json:"tutor,omitempty"`
}

// TableName 指定表名
func (WeeklyAvailabilityRule) TableName() string { return "weekly_availability_rules" }

// ScheduleException 日期例外表 — 对应 schedule_exceptions
// 全天例外压制当天全部规则；部分例外仅屏蔽 [StartTime, EndTime) 区间
type ScheduleException struct {
	ExceptionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exception_id"`
	TutorID     string    `gorm:"type:uuid;not null"                             json:"tutor_id"`
	Date        time.Time `gorm:"type:date;not null"                             json:"date"`
	IsFullDay   bool      `gorm:"not null;default:true"                          json:"is_full_day"`
	StartTime   *string   `gorm:"type:time"                                      json:"start_time,omitempty"`
	EndTime     *string   `gorm:"type:time"                                      json:"end_time,omitempty"`
	Reason      string    `gorm:"type:varchar(200);not null;default:''"          json:"reason,omitempty"`
	VersionedModel

	// 关联
	Tutor *User `gorm:"foreignKey:TutorID;references:UserID" json:"tutor,omitempty"`
}

// TableName 指定表名
func (ScheduleException) TableName() string { return "schedule_exceptions" }

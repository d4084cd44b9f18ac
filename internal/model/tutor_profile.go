package model

// TutorProfile 导师档案表 — 对应 tutor_profiles（与 users 1:1）
type TutorProfile struct {
	TutorID     string  `gorm:"type:uuid;primaryKey"                  json:"tutor_id"`
	Bio         string  `gorm:"type:varchar(2000);not null;default:''" json:"bio"`
	HourlyRate  float64 `gorm:"type:numeric(10,2);not null;default:0"  json:"hourly_rate"`
	City        string  `gorm:"type:varchar(100);not null;default:''"  json:"city"`
	SlotMinutes int     `gorm:"not null;default:0"                     json:"slot_minutes"` // 0 表示使用全局默认课时长度
	Rating      float64 `gorm:"type:numeric(3,2);not null;default:0"   json:"rating"`
	IsPublished bool    `gorm:"not null;default:false"                 json:"is_published"`
	BaseModel

	// 关联
	User     *User     `gorm:"foreignKey:TutorID;references:UserID"                            json:"user,omitempty"`
	Subjects []Subject `gorm:"many2many:tutor_subjects;joinForeignKey:TutorID;joinReferences:SubjectID" json:"subjects,omitempty"`
}

// TableName 指定表名
func (TutorProfile) TableName() string { return "tutor_profiles" }

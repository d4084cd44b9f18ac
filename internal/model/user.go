package model

// 用户角色
const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	City         string `gorm:"type:varchar(100);not null;default:''"          json:"city"`
	VersionedModel

	// 关联
	TutorProfile *TutorProfile `gorm:"foreignKey:TutorID;references:UserID" json:"tutor_profile,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

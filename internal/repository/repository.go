package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User              UserRepository
	Subject           SubjectRepository
	TutorProfile      TutorProfileRepository
	AvailabilityRule  AvailabilityRuleRepository
	ScheduleException ScheduleExceptionRepository
	Lesson            LessonRepository
	LessonRequest     LessonRequestRepository
	Homework          HomeworkRepository
	Message           MessageRepository
	Notification      NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:                db,
		User:              NewUserRepo(db),
		Subject:           NewSubjectRepo(db),
		TutorProfile:      NewTutorProfileRepo(db),
		AvailabilityRule:  NewAvailabilityRuleRepo(db),
		ScheduleException: NewScheduleExceptionRepo(db),
		Lesson:            NewLessonRepo(db),
		LessonRequest:     NewLessonRequestRepo(db),
		Homework:          NewHomeworkRepo(db),
		Message:           NewMessageRepo(db),
		Notification:      NewNotificationRepo(db),
	}
}

// Transaction 在单个数据库事务内执行 fn
// fn 收到的 Repository 绑定到事务连接；fn 返回错误时整体回滚
// db 为 nil 时（单元测试用 mock 聚合）直接以原聚合执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

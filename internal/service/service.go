package service

import (
	"errors"

	"go.uber.org/zap"

	"classconnect/backend/config"
	"classconnect/backend/internal/repository"
	"classconnect/backend/pkg/jwt"
	"classconnect/backend/pkg/redis"
)

// 跨模块共享业务错误
var (
	ErrForbidden = errors.New("无权执行此操作")
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Subject      SubjectService
	Tutor        TutorService
	Availability AvailabilityService
	Booking      BookingService
	Lesson       LessonService
	Homework     HomeworkService
	Message      MessageService
	Notification NotificationService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	notificationSvc := NewNotificationService(repo, logger)
	availabilitySvc := NewAvailabilityService(cfg, repo, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Subject:      NewSubjectService(repo, logger),
		Tutor:        NewTutorService(repo, logger),
		Availability: availabilitySvc,
		Booking:      NewBookingService(cfg, repo, rdb, availabilitySvc, notificationSvc, logger),
		Lesson:       NewLessonService(repo, notificationSvc, logger),
		Homework:     NewHomeworkService(repo, notificationSvc, logger),
		Message:      NewMessageService(repo, logger),
		Notification: notificationSvc,
		Export:       NewExportService(repo, logger),
	}
}

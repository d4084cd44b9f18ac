package handler

import "classconnect/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Subject      *SubjectHandler
	Tutor        *TutorHandler
	Availability *AvailabilityHandler
	Booking      *BookingHandler
	Lesson       *LessonHandler
	Homework     *HomeworkHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, svc.User),
		User:         NewUserHandler(svc.User),
		Subject:      NewSubjectHandler(svc.Subject),
		Tutor:        NewTutorHandler(svc.Tutor),
		Availability: NewAvailabilityHandler(svc.Availability),
		Booking:      NewBookingHandler(svc.Booking),
		Lesson:       NewLessonHandler(svc.Lesson),
		Homework:     NewHomeworkHandler(svc.Homework),
		Message:      NewMessageHandler(svc.Message),
		Notification: NewNotificationHandler(svc.Notification),
		Export:       NewExportHandler(svc.Export),
	}
}

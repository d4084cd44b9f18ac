package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
)

var (
	ErrLessonNotFound    = errors.New("课程不存在")
	ErrInvalidTransition = errors.New("当前状态不允许该迁移")
)

// LessonService 课程业务接口
type LessonService interface {
	GetByID(ctx context.Context, callerID, lessonID string) (*dto.LessonResponse, error)
	UpdateStatus(ctx context.Context, callerID, callerRole, lessonID string, req *dto.UpdateLessonStatusRequest) (*dto.LessonResponse, error)
	ListForTutor(ctx context.Context, tutorID string, req *dto.LessonListRequest) (*dto.LessonListResponse, error)
	ListForStudent(ctx context.Context, studentID string, req *dto.LessonListRequest) (*dto.LessonListResponse, error)
}

type lessonService struct {
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
}

// NewLessonService 创建 LessonService 实例
func NewLessonService(repo *repository.Repository, notification NotificationService, logger *zap.Logger) LessonService {
	return &lessonService{repo: repo, notification: notification, logger: logger}
}

func (s *lessonService) GetByID(ctx context.Context, callerID, lessonID string) (*dto.LessonResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	// 仅课程双方可见
	if lesson.TutorID != callerID && lesson.StudentID != callerID {
		return nil, ErrForbidden
	}
	return toLessonResponse(lesson), nil
}

// UpdateStatus 按状态机迁移课程状态
//
// 角色约束：导师可执行全部合法迁移；学生仅可取消
// 终态（completed/cancelled）只读
func (s *lessonService) UpdateStatus(ctx context.Context, callerID, callerRole, lessonID string, req *dto.UpdateLessonStatusRequest) (*dto.LessonResponse, error) {
	lesson, err := s.repo.Lesson.GetByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}

	// 1. 归属与角色检查
	switch {
	case lesson.TutorID == callerID && callerRole == model.RoleTutor:
		// 导师可执行全部合法迁移
	case lesson.StudentID == callerID && callerRole == model.RoleStudent:
		if req.Status != model.LessonStatusCancelled {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	// 2. 状态机检查
	if !lesson.CanTransitionTo(req.Status) {
		return nil, ErrInvalidTransition
	}

	prev := lesson.Status
	lesson.Status = req.Status
	lesson.UpdatedBy = &callerID
	if err := s.repo.Lesson.Update(ctx, lesson); err != nil {
		s.logger.Error("更新课程状态失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("课程状态已更新",
		zap.String("lesson_id", lesson.LessonID),
		zap.String("from", prev),
		zap.String("to", lesson.Status))

	// 3. 取消时通知对方
	if req.Status == model.LessonStatusCancelled {
		peer := lesson.StudentID
		if callerID == lesson.StudentID {
			peer = lesson.TutorID
		}
		s.notification.Notify(ctx, peer,
			model.NotificationTypeLessonCancelled,
			"课程已取消",
			fmt.Sprintf("%s %s-%s 的课程已被取消", lesson.Date.Format("2006-01-02"), normalizeClock(lesson.StartTime), normalizeClock(lesson.EndTime)),
			"lesson", lesson.LessonID)
	}

	return toLessonResponse(lesson), nil
}

func (s *lessonService) ListForTutor(ctx context.Context, tutorID string, req *dto.LessonListRequest) (*dto.LessonListResponse, error) {
	filter, err := buildLessonFilter(req)
	if err != nil {
		return nil, err
	}
	lessons, total, err := s.repo.Lesson.ListByTutor(ctx, tutorID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	return buildLessonList(lessons, total, req), nil
}

func (s *lessonService) ListForStudent(ctx context.Context, studentID string, req *dto.LessonListRequest) (*dto.LessonListResponse, error) {
	filter, err := buildLessonFilter(req)
	if err != nil {
		return nil, err
	}
	lessons, total, err := s.repo.Lesson.ListByStudent(ctx, studentID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	return buildLessonList(lessons, total, req), nil
}

func buildLessonFilter(req *dto.LessonListRequest) (repository.LessonFilter, error) {
	filter := repository.LessonFilter{Status: req.Status}
	if req.From != "" {
		from, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.To = &to
	}
	return filter, nil
}

func buildLessonList(lessons []model.Lesson, total int64, req *dto.LessonListRequest) *dto.LessonListResponse {
	items := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		items = append(items, *toLessonResponse(&lessons[i]))
	}
	return &dto.LessonListResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    items,
	}
}

func toLessonResponse(lesson *model.Lesson) *dto.LessonResponse {
	resp := &dto.LessonResponse{
		ID:        lesson.LessonID,
		Date:      lesson.Date.Format("2006-01-02"),
		StartTime: normalizeClock(lesson.StartTime),
		EndTime:   normalizeClock(lesson.EndTime),
		Status:    lesson.Status,
		CreatedAt: lesson.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: lesson.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if lesson.Tutor != nil {
		resp.Tutor = &dto.UserBrief{ID: lesson.Tutor.UserID, Name: lesson.Tutor.Name}
	}
	if lesson.Student != nil {
		resp.Student = &dto.UserBrief{ID: lesson.Student.UserID, Name: lesson.Student.Name}
	}
	if lesson.Subject != nil {
		resp.Subject = &dto.SubjectBrief{ID: lesson.Subject.SubjectID, Name: lesson.Subject.Name}
	}
	return resp
}

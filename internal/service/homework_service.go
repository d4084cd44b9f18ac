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
	ErrHomeworkNotFound = errors.New("作业不存在")
	ErrLessonNotOpen    = errors.New("课程状态不允许布置作业")
)

// HomeworkService 作业业务接口
// 导师围绕课程布置作业，学生提交，导师批改
type HomeworkService interface {
	Assign(ctx context.Context, tutorID string, req *dto.AssignHomeworkRequest) (*dto.HomeworkResponse, error)
	Submit(ctx context.Context, studentID, homeworkID string, req *dto.SubmitHomeworkRequest) (*dto.HomeworkResponse, error)
	Review(ctx context.Context, tutorID, homeworkID string, req *dto.ReviewHomeworkRequest) (*dto.HomeworkResponse, error)
	GetByID(ctx context.Context, callerID, homeworkID string) (*dto.HomeworkResponse, error)
	ListForTutor(ctx context.Context, tutorID string, req *dto.HomeworkListRequest) (*dto.HomeworkListResponse, error)
	ListForStudent(ctx context.Context, studentID string, req *dto.HomeworkListRequest) (*dto.HomeworkListResponse, error)
}

type homeworkService struct {
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
}

// NewHomeworkService 创建 HomeworkService 实例
func NewHomeworkService(repo *repository.Repository, notification NotificationService, logger *zap.Logger) HomeworkService {
	return &homeworkService{repo: repo, notification: notification, logger: logger}
}

func (s *homeworkService) Assign(ctx context.Context, tutorID string, req *dto.AssignHomeworkRequest) (*dto.HomeworkResponse, error) {
	// 1. 课程必须存在、归属导师且未取消
	lesson, err := s.repo.Lesson.GetByID(ctx, req.LessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.TutorID != tutorID {
		return nil, ErrForbidden
	}
	if lesson.Status == model.LessonStatusCancelled || lesson.Status == model.LessonStatusPending {
		return nil, ErrLessonNotOpen
	}

	hw := &model.Homework{
		LessonID:    lesson.LessonID,
		TutorID:     lesson.TutorID,
		StudentID:   lesson.StudentID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.HomeworkStatusAssigned,
	}
	hw.CreatedBy = &tutorID
	hw.UpdatedBy = &tutorID

	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		hw.DueDate = &due
	}

	if err := s.repo.Homework.Create(ctx, hw); err != nil {
		s.logger.Error("布置作业失败", zap.Error(err))
		return nil, err
	}

	s.notification.Notify(ctx, hw.StudentID,
		model.NotificationTypeHomeworkAssigned,
		"收到新作业",
		fmt.Sprintf("导师布置了新作业：%s", hw.Title),
		"homework", hw.HomeworkID)

	return toHomeworkResponse(hw), nil
}

func (s *homeworkService) Submit(ctx context.Context, studentID, homeworkID string, req *dto.SubmitHomeworkRequest) (*dto.HomeworkResponse, error) {
	hw, err := s.repo.Homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		return nil, err
	}
	if hw.StudentID != studentID {
		return nil, ErrForbidden
	}
	if !hw.CanTransitionTo(model.HomeworkStatusSubmitted) {
		return nil, ErrInvalidTransition
	}

	hw.Answer = req.Answer
	hw.Status = model.HomeworkStatusSubmitted
	hw.UpdatedBy = &studentID
	if err := s.repo.Homework.Update(ctx, hw); err != nil {
		s.logger.Error("提交作业失败", zap.Error(err))
		return nil, err
	}

	s.notification.Notify(ctx, hw.TutorID,
		model.NotificationTypeHomeworkSubmitted,
		"作业已提交",
		fmt.Sprintf("学生已提交作业：%s", hw.Title),
		"homework", hw.HomeworkID)

	return toHomeworkResponse(hw), nil
}

func (s *homeworkService) Review(ctx context.Context, tutorID, homeworkID string, req *dto.ReviewHomeworkRequest) (*dto.HomeworkResponse, error) {
	hw, err := s.repo.Homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		return nil, err
	}
	if hw.TutorID != tutorID {
		return nil, ErrForbidden
	}
	if !hw.CanTransitionTo(model.HomeworkStatusReviewed) {
		return nil, ErrInvalidTransition
	}

	grade := req.Grade
	hw.Grade = &grade
	hw.Feedback = req.Feedback
	hw.Status = model.HomeworkStatusReviewed
	hw.UpdatedBy = &tutorID
	if err := s.repo.Homework.Update(ctx, hw); err != nil {
		s.logger.Error("批改作业失败", zap.Error(err))
		return nil, err
	}
	return toHomeworkResponse(hw), nil
}

func (s *homeworkService) GetByID(ctx context.Context, callerID, homeworkID string) (*dto.HomeworkResponse, error) {
	hw, err := s.repo.Homework.GetByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHomeworkNotFound
		}
		return nil, err
	}
	if hw.TutorID != callerID && hw.StudentID != callerID {
		return nil, ErrForbidden
	}
	return toHomeworkResponse(hw), nil
}

func (s *homeworkService) ListForTutor(ctx context.Context, tutorID string, req *dto.HomeworkListRequest) (*dto.HomeworkListResponse, error) {
	homeworks, total, err := s.repo.Homework.ListByTutor(ctx, tutorID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, err
	}
	return buildHomeworkList(homeworks, total, req), nil
}

func (s *homeworkService) ListForStudent(ctx context.Context, studentID string, req *dto.HomeworkListRequest) (*dto.HomeworkListResponse, error) {
	homeworks, total, err := s.repo.Homework.ListByStudent(ctx, studentID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, err
	}
	return buildHomeworkList(homeworks, total, req), nil
}

func buildHomeworkList(homeworks []model.Homework, total int64, req *dto.HomeworkListRequest) *dto.HomeworkListResponse {
	items := make([]dto.HomeworkResponse, 0, len(homeworks))
	for i := range homeworks {
		items = append(items, *toHomeworkResponse(&homeworks[i]))
	}
	return &dto.HomeworkListResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    items,
	}
}

func toHomeworkResponse(hw *model.Homework) *dto.HomeworkResponse {
	resp := &dto.HomeworkResponse{
		ID:          hw.HomeworkID,
		LessonID:    hw.LessonID,
		Title:       hw.Title,
		Description: hw.Description,
		Status:      hw.Status,
		Answer:      hw.Answer,
		Grade:       hw.Grade,
		Feedback:    hw.Feedback,
		CreatedAt:   hw.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   hw.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if hw.DueDate != nil {
		due := hw.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}
	if hw.Tutor != nil {
		resp.Tutor = &dto.UserBrief{ID: hw.Tutor.UserID, Name: hw.Tutor.Name}
	}
	if hw.Student != nil {
		resp.Student = &dto.UserBrief{ID: hw.Student.UserID, Name: hw.Student.Name}
	}
	return resp
}

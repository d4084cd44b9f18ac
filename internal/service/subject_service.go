package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
)

var (
	ErrSubjectNotFound = errors.New("科目不存在")
	ErrSubjectExists   = errors.New("同名科目已存在")
)

// SubjectService 科目业务接口
type SubjectService interface {
	Create(ctx context.Context, operatorID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	List(ctx context.Context, activeOnly bool) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, operatorID, subjectID string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, operatorID, subjectID string) error
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

func (s *subjectService) Create(ctx context.Context, operatorID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	// 名称唯一性检查
	existing, err := s.repo.Subject.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询科目失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrSubjectExists
	}

	subject := &model.Subject{
		Name:     req.Name,
		IsActive: true,
	}
	subject.CreatedBy = &operatorID
	subject.UpdatedBy = &operatorID

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建科目失败", zap.Error(err))
		return nil, err
	}

	return toSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context, activeOnly bool) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("查询科目列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

func (s *subjectService) Update(ctx context.Context, operatorID, subjectID string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != subject.Name {
		existing, err := s.repo.Subject.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrSubjectExists
		}
		subject.Name = *req.Name
	}
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}
	subject.UpdatedBy = &operatorID

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("更新科目失败", zap.Error(err))
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, operatorID, subjectID string) error {
	if _, err := s.repo.Subject.GetByID(ctx, subjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}
	return s.repo.Subject.Delete(ctx, subjectID, operatorID)
}

func toSubjectResponse(subject *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:        subject.SubjectID,
		Name:      subject.Name,
		IsActive:  subject.IsActive,
		CreatedAt: subject.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: subject.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

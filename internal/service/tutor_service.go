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
	ErrTutorNotFound      = errors.New("导师不存在")
	ErrProfileNotFound    = errors.New("导师档案不存在")
	ErrUnknownSubject     = errors.New("科目不存在或已停用")
	ErrProfileUnpublished = errors.New("导师档案未发布")
)

// TutorService 导师档案业务接口
type TutorService interface {
	UpsertProfile(ctx context.Context, tutorID string, req *dto.UpsertTutorProfileRequest) (*dto.TutorProfileResponse, error)
	GetProfile(ctx context.Context, tutorID string) (*dto.TutorProfileResponse, error)
	Search(ctx context.Context, req *dto.TutorSearchRequest) (*dto.TutorSearchResponse, error)
}

type tutorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTutorService 创建 TutorService 实例
func NewTutorService(repo *repository.Repository, logger *zap.Logger) TutorService {
	return &tutorService{repo: repo, logger: logger}
}

func (s *tutorService) UpsertProfile(ctx context.Context, tutorID string, req *dto.UpsertTutorProfileRequest) (*dto.TutorProfileResponse, error) {
	// 1. 仅导师角色可维护档案
	user, err := s.repo.User.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Role != model.RoleTutor {
		return nil, ErrForbidden
	}

	// 2. 读取现有档案（首次调用时新建）
	profile, err := s.repo.TutorProfile.GetByID(ctx, tutorID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询导师档案失败", zap.Error(err))
			return nil, err
		}
		profile = &model.TutorProfile{TutorID: tutorID, City: user.City}
	}

	if req.Bio != nil {
		profile.Bio = *req.Bio
	}
	if req.HourlyRate != nil {
		profile.HourlyRate = *req.HourlyRate
	}
	if req.City != nil {
		profile.City = *req.City
	}
	if req.SlotMinutes != nil {
		profile.SlotMinutes = *req.SlotMinutes
	}
	if req.IsPublished != nil {
		profile.IsPublished = *req.IsPublished
	}

	if err := s.repo.TutorProfile.Upsert(ctx, profile); err != nil {
		s.logger.Error("保存导师档案失败", zap.Error(err))
		return nil, err
	}

	// 3. 替换教授科目（传入 subject_ids 时全量覆盖）
	if req.SubjectIDs != nil {
		subjects := make([]model.Subject, 0, len(req.SubjectIDs))
		for _, id := range req.SubjectIDs {
			subject, err := s.repo.Subject.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrUnknownSubject
				}
				return nil, err
			}
			if !subject.IsActive {
				return nil, ErrUnknownSubject
			}
			subjects = append(subjects, *subject)
		}
		if err := s.repo.TutorProfile.ReplaceSubjects(ctx, tutorID, subjects); err != nil {
			s.logger.Error("更新导师科目失败", zap.Error(err))
			return nil, err
		}
		profile.Subjects = subjects
	}

	if profile.User == nil {
		profile.User = user
	}
	return toTutorProfileResponse(profile), nil
}

func (s *tutorService) GetProfile(ctx context.Context, tutorID string) (*dto.TutorProfileResponse, error) {
	profile, err := s.repo.TutorProfile.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		s.logger.Error("查询导师档案失败", zap.Error(err))
		return nil, err
	}
	return toTutorProfileResponse(profile), nil
}

func (s *tutorService) Search(ctx context.Context, req *dto.TutorSearchRequest) (*dto.TutorSearchResponse, error) {
	filter := repository.TutorSearchFilter{
		SubjectID: req.SubjectID,
		City:      req.City,
		MaxRate:   req.MaxRate,
		MinRating: req.MinRating,
	}

	profiles, total, err := s.repo.TutorProfile.Search(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("搜索导师失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.TutorProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, *toTutorProfileResponse(&profiles[i]))
	}

	return &dto.TutorSearchResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    items,
	}, nil
}

func toTutorProfileResponse(profile *model.TutorProfile) *dto.TutorProfileResponse {
	name := ""
	if profile.User != nil {
		name = profile.User.Name
	}

	subjects := make([]dto.SubjectBrief, 0, len(profile.Subjects))
	for _, sub := range profile.Subjects {
		subjects = append(subjects, dto.SubjectBrief{ID: sub.SubjectID, Name: sub.Name})
	}

	return &dto.TutorProfileResponse{
		TutorID:     profile.TutorID,
		Name:        name,
		Bio:         profile.Bio,
		HourlyRate:  profile.HourlyRate,
		City:        profile.City,
		SlotMinutes: profile.SlotMinutes,
		Rating:      profile.Rating,
		IsPublished: profile.IsPublished,
		Subjects:    subjects,
		CreatedAt:   profile.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   profile.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

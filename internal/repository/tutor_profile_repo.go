package repository

import (
	"context"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// TutorSearchFilter 导师搜索条件
type TutorSearchFilter struct {
	SubjectID string
	City      string
	MaxRate   *float64
	MinRating *float64
}

// TutorProfileRepository 导师档案数据访问接口
type TutorProfileRepository interface {
	Upsert(ctx context.Context, profile *model.TutorProfile) error
	GetByID(ctx context.Context, tutorID string) (*model.TutorProfile, error)
	Search(ctx context.Context, filter TutorSearchFilter, offset, limit int) ([]model.TutorProfile, int64, error)
	ReplaceSubjects(ctx context.Context, tutorID string, subjects []model.Subject) error
}

type tutorProfileRepo struct {
	db *gorm.DB
}

// NewTutorProfileRepo 创建 TutorProfileRepository 实例
func NewTutorProfileRepo(db *gorm.DB) TutorProfileRepository {
	return &tutorProfileRepo{db: db}
}

func (r *tutorProfileRepo) Upsert(ctx context.Context, profile *model.TutorProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *tutorProfileRepo) GetByID(ctx context.Context, tutorID string) (*model.TutorProfile, error) {
	var profile model.TutorProfile
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Subjects").
		Where("tutor_id = ?", tutorID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *tutorProfileRepo) Search(ctx context.Context, filter TutorSearchFilter, offset, limit int) ([]model.TutorProfile, int64, error) {
	var profiles []model.TutorProfile
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.TutorProfile{}).
		Where("is_published = ?", true)

	if filter.City != "" {
		db = db.Where("city ILIKE ?", filter.City)
	}
	if filter.MaxRate != nil {
		db = db.Where("hourly_rate <= ?", *filter.MaxRate)
	}
	if filter.MinRating != nil {
		db = db.Where("rating >= ?", *filter.MinRating)
	}
	if filter.SubjectID != "" {
		db = db.Where("tutor_id IN (?)",
			r.db.Table("tutor_subjects").Select("tutor_id").Where("subject_id = ?", filter.SubjectID))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("User").
		Preload("Subjects").
		Order("rating DESC, hourly_rate ASC").
		Offset(offset).
		Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}

func (r *tutorProfileRepo) ReplaceSubjects(ctx context.Context, tutorID string, subjects []model.Subject) error {
	profile := model.TutorProfile{TutorID: tutorID}
	return r.db.WithContext(ctx).Model(&profile).Association("Subjects").Replace(subjects)
}

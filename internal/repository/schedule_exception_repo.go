package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// ScheduleExceptionRepository 日期例外数据访问接口
type ScheduleExceptionRepository interface {
	Create(ctx context.Context, exc *model.ScheduleException) error
	GetByID(ctx context.Context, id string) (*model.ScheduleException, error)
	ListByTutor(ctx context.Context, tutorID string, from time.Time) ([]model.ScheduleException, error)
	ListByTutorAndDate(ctx context.Context, tutorID string, date time.Time) ([]model.ScheduleException, error)
	Delete(ctx context.Context, id string, deletedBy string) error
}

type scheduleExceptionRepo struct {
	db *gorm.DB
}

// NewScheduleExceptionRepo 创建 ScheduleExceptionRepository 实例
func NewScheduleExceptionRepo(db *gorm.DB) ScheduleExceptionRepository {
	return &scheduleExceptionRepo{db: db}
}

func (r *scheduleExceptionRepo) Create(ctx context.Context, exc *model.ScheduleException) error {
	return r.db.WithContext(ctx).Create(exc).Error
}

func (r *scheduleExceptionRepo) GetByID(ctx context.Context, id string) (*model.ScheduleException, error) {
	var exc model.ScheduleException
	err := r.db.WithContext(ctx).Where("exception_id = ?", id).First(&exc).Error
	if err != nil {
		return nil, err
	}
	return &exc, nil
}

func (r *scheduleExceptionRepo) ListByTutor(ctx context.Context, tutorID string, from time.Time) ([]model.ScheduleException, error) {
	var excs []model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND date >= ?", tutorID, from.Format("2006-01-02")).
		Order("date ASC").
		Find(&excs).Error
	return excs, err
}

func (r *scheduleExceptionRepo) ListByTutorAndDate(ctx context.Context, tutorID string, date time.Time) ([]model.ScheduleException, error) {
	var excs []model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND date = ?", tutorID, date.Format("2006-01-02")).
		Find(&excs).Error
	return excs, err
}

func (r *scheduleExceptionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ScheduleException{}).
		Where("exception_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

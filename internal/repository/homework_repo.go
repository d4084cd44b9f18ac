package repository

import (
	"context"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// HomeworkRepository 作业数据访问接口
type HomeworkRepository interface {
	Create(ctx context.Context, hw *model.Homework) error
	GetByID(ctx context.Context, id string) (*model.Homework, error)
	ListByTutor(ctx context.Context, tutorID, status string, offset, limit int) ([]model.Homework, int64, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Homework, int64, error)
	Update(ctx context.Context, hw *model.Homework) error
}

type homeworkRepo struct {
	db *gorm.DB
}

// NewHomeworkRepo 创建 HomeworkRepository 实例
func NewHomeworkRepo(db *gorm.DB) HomeworkRepository {
	return &homeworkRepo{db: db}
}

func (r *homeworkRepo) Create(ctx context.Context, hw *model.Homework) error {
	return r.db.WithContext(ctx).Create(hw).Error
}

func (r *homeworkRepo) GetByID(ctx context.Context, id string) (*model.Homework, error) {
	var hw model.Homework
	err := r.db.WithContext(ctx).
		Preload("Tutor").
		Preload("Student").
		Where("homework_id = ?", id).
		First(&hw).Error
	if err != nil {
		return nil, err
	}
	return &hw, nil
}

func (r *homeworkRepo) ListByTutor(ctx context.Context, tutorID, status string, offset, limit int) ([]model.Homework, int64, error) {
	return r.list(ctx, "tutor_id = ?", tutorID, status, offset, limit)
}

func (r *homeworkRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Homework, int64, error) {
	return r.list(ctx, "student_id = ?", studentID, status, offset, limit)
}

func (r *homeworkRepo) list(ctx context.Context, ownerCond, ownerID, status string, offset, limit int) ([]model.Homework, int64, error) {
	var hws []model.Homework
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Homework{}).Where(ownerCond, ownerID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Tutor").
		Preload("Student").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&hws).Error
	return hws, total, err
}

func (r *homeworkRepo) Update(ctx context.Context, hw *model.Homework) error {
	return r.db.WithContext(ctx).Save(hw).Error
}

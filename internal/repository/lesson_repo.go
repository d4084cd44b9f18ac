package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// LessonFilter 课程列表查询条件
type LessonFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// LessonRepository 课程数据访问接口
type LessonRepository interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id string) (*model.Lesson, error)
	ListOccupyingByTutorAndDate(ctx context.Context, tutorID string, date time.Time) ([]model.Lesson, error)
	ListByTutor(ctx context.Context, tutorID string, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error)
	ListByStudent(ctx context.Context, studentID string, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error)
	Update(ctx context.Context, lesson *model.Lesson) error
}

type lessonRepo struct {
	db *gorm.DB
}

// NewLessonRepo 创建 LessonRepository 实例
func NewLessonRepo(db *gorm.DB) LessonRepository {
	return &lessonRepo{db: db}
}

func (r *lessonRepo) Create(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Create(lesson).Error
}

func (r *lessonRepo) GetByID(ctx context.Context, id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.WithContext(ctx).
		Preload("Tutor").
		Preload("Student").
		Preload("Subject").
		Where("lesson_id = ?", id).
		First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListOccupyingByTutorAndDate 查询指定日期占用导师时间的课程（已取消的除外）
func (r *lessonRepo) ListOccupyingByTutorAndDate(ctx context.Context, tutorID string, date time.Time) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND date = ? AND status <> ?",
			tutorID, date.Format("2006-01-02"), model.LessonStatusCancelled).
		Order("start_time ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *lessonRepo) ListByTutor(ctx context.Context, tutorID string, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	return r.list(ctx, "tutor_id = ?", tutorID, filter, offset, limit)
}

func (r *lessonRepo) ListByStudent(ctx context.Context, studentID string, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	return r.list(ctx, "student_id = ?", studentID, filter, offset, limit)
}

func (r *lessonRepo) list(ctx context.Context, ownerCond, ownerID string, filter LessonFilter, offset, limit int) ([]model.Lesson, int64, error) {
	var lessons []model.Lesson
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Lesson{}).Where(ownerCond, ownerID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("date >= ?", filter.From.Format("2006-01-02"))
	}
	if filter.To != nil {
		db = db.Where("date <= ?", filter.To.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Tutor").
		Preload("Student").
		Preload("Subject").
		Order("date ASC, start_time ASC").
		Offset(offset).
		Limit(limit).
		Find(&lessons).Error
	return lessons, total, err
}

func (r *lessonRepo) Update(ctx context.Context, lesson *model.Lesson) error {
	return r.db.WithContext(ctx).Save(lesson).Error
}

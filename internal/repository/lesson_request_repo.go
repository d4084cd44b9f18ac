package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// LessonRequestRepository 预约申请数据访问接口
type LessonRequestRepository interface {
	Create(ctx context.Context, req *model.LessonRequest) error
	GetByID(ctx context.Context, id string) (*model.LessonRequest, error)
	ListPendingByTutorAndDate(ctx context.Context, tutorID string, date time.Time) ([]model.LessonRequest, error)
	ListByTutor(ctx context.Context, tutorID, status string, offset, limit int) ([]model.LessonRequest, int64, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.LessonRequest, int64, error)
	Update(ctx context.Context, req *model.LessonRequest) error
}

type lessonRequestRepo struct {
	db *gorm.DB
}

// NewLessonRequestRepo 创建 LessonRequestRepository 实例
func NewLessonRequestRepo(db *gorm.DB) LessonRequestRepository {
	return &lessonRequestRepo{db: db}
}

func (r *lessonRequestRepo) Create(ctx context.Context, req *model.LessonRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *lessonRequestRepo) GetByID(ctx context.Context, id string) (*model.LessonRequest, error) {
	var req model.LessonRequest
	err := r.db.WithContext(ctx).
		Preload("Tutor").
		Preload("Student").
		Preload("Subject").
		Where("request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListPendingByTutorAndDate 查询指定日期占用导师时间的待处理申请
func (r *lessonRequestRepo) ListPendingByTutorAndDate(ctx context.Context, tutorID string, date time.Time) ([]model.LessonRequest, error) {
	var reqs []model.LessonRequest
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND requested_date = ? AND status = ?",
			tutorID, date.Format("2006-01-02"), model.RequestStatusPending).
		Order("requested_start_time ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *lessonRequestRepo) ListByTutor(ctx context.Context, tutorID, status string, offset, limit int) ([]model.LessonRequest, int64, error) {
	return r.list(ctx, "tutor_id = ?", tutorID, status, offset, limit)
}

func (r *lessonRequestRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.LessonRequest, int64, error) {
	return r.list(ctx, "student_id = ?", studentID, status, offset, limit)
}

func (r *lessonRequestRepo) list(ctx context.Context, ownerCond, ownerID, status string, offset, limit int) ([]model.LessonRequest, int64, error) {
	var reqs []model.LessonRequest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.LessonRequest{}).Where(ownerCond, ownerID)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Tutor").
		Preload("Student").
		Preload("Subject").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&reqs).Error
	return reqs, total, err
}

func (r *lessonRequestRepo) Update(ctx context.Context, req *model.LessonRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

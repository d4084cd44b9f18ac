package repository

import (
	"context"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// AvailabilityRuleRepository 每周可用时间规则数据访问接口
type AvailabilityRuleRepository interface {
	Create(ctx context.Context, rule *model.WeeklyAvailabilityRule) error
	GetByID(ctx context.Context, id string) (*model.WeeklyAvailabilityRule, error)
	ListByTutor(ctx context.Context, tutorID string) ([]model.WeeklyAvailabilityRule, error)
	ListActiveByTutorAndDay(ctx context.Context, tutorID string, dayOfWeek int) ([]model.WeeklyAvailabilityRule, error)
	Update(ctx context.Context, rule *model.WeeklyAvailabilityRule) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type availabilityRuleRepo struct {
	db *gorm.DB
}

// NewAvailabilityRuleRepo 创建 AvailabilityRuleRepository 实例
func NewAvailabilityRuleRepo(db *gorm.DB) AvailabilityRuleRepository {
	return &availabilityRuleRepo{db: db}
}

func (r *availabilityRuleRepo) Create(ctx context.Context, rule *model.WeeklyAvailabilityRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *availabilityRuleRepo) GetByID(ctx context.Context, id string) (*model.WeeklyAvailabilityRule, error) {
	var rule model.WeeklyAvailabilityRule
	err := r.db.WithContext(ctx).Where("rule_id = ?", id).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *availabilityRuleRepo) ListByTutor(ctx context.Context, tutorID string) ([]model.WeeklyAvailabilityRule, error) {
	var rules []model.WeeklyAvailabilityRule
	err := r.db.WithContext(ctx).
		Where("tutor_id = ?", tutorID).
		Order("day_of_week ASC, start_time ASC").
		Find(&rules).Error
	return rules, err
}

func (r *availabilityRuleRepo) ListActiveByTutorAndDay(ctx context.Context, tutorID string, dayOfWeek int) ([]model.WeeklyAvailabilityRule, error) {
	var rules []model.WeeklyAvailabilityRule
	err := r.db.WithContext(ctx).
		Where("tutor_id = ? AND day_of_week = ? AND is_active = ?", tutorID, dayOfWeek, true).
		Order("start_time ASC").
		Find(&rules).Error
	return rules, err
}

func (r *availabilityRuleRepo) Update(ctx context.Context, rule *model.WeeklyAvailabilityRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *availabilityRuleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.WeeklyAvailabilityRule{}).
		Where("rule_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

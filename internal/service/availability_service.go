package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classconnect/backend/config"
	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
)

var (
	ErrInvalidDate       = errors.New("日期超出可预约范围")
	ErrInvalidTimeRange  = errors.New("时间区间无效")
	ErrRuleNotFound      = errors.New("可用时间规则不存在")
	ErrExceptionNotFound = errors.New("日期例外不存在")
)

// AvailabilityService 可用时间业务接口
// 负责每周规则与日期例外的维护，以及某日可预约时段的派生计算
type AvailabilityService interface {
	CreateRule(ctx context.Context, tutorID string, req *dto.CreateWeeklyRuleRequest) (*dto.WeeklyRuleResponse, error)
	ListRules(ctx context.Context, tutorID string) ([]dto.WeeklyRuleResponse, error)
	UpdateRule(ctx context.Context, tutorID, ruleID string, req *dto.UpdateWeeklyRuleRequest) (*dto.WeeklyRuleResponse, error)
	DeleteRule(ctx context.Context, tutorID, ruleID string) error

	CreateException(ctx context.Context, tutorID string, req *dto.CreateExceptionRequest) (*dto.ExceptionResponse, error)
	ListExceptions(ctx context.Context, tutorID string) ([]dto.ExceptionResponse, error)
	DeleteException(ctx context.Context, tutorID, exceptionID string) error

	ResolveSlots(ctx context.Context, tutorID, dateStr string) ([]dto.TimeSlotResponse, error)
}

type availabilityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) AvailabilityService {
	return &availabilityService{cfg: cfg, repo: repo, logger: logger}
}

// ── 每周规则 ──

func (s *availabilityService) CreateRule(ctx context.Context, tutorID string, req *dto.CreateWeeklyRuleRequest) (*dto.WeeklyRuleResponse, error) {
	start, err := parseClock(req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	end, err := parseClock(req.EndTime)
	if err != nil || start >= end {
		return nil, ErrInvalidTimeRange
	}

	rule := &model.WeeklyAvailabilityRule{
		TutorID:   tutorID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  true,
	}
	rule.CreatedBy = &tutorID
	rule.UpdatedBy = &tutorID

	if err := s.repo.AvailabilityRule.Create(ctx, rule); err != nil {
		s.logger.Error("创建可用时间规则失败", zap.Error(err))
		return nil, err
	}
	return toWeeklyRuleResponse(rule), nil
}

func (s *availabilityService) ListRules(ctx context.Context, tutorID string) ([]dto.WeeklyRuleResponse, error) {
	rules, err := s.repo.AvailabilityRule.ListByTutor(ctx, tutorID)
	if err != nil {
		s.logger.Error("查询可用时间规则失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.WeeklyRuleResponse, 0, len(rules))
	for i := range rules {
		result = append(result, *toWeeklyRuleResponse(&rules[i]))
	}
	return result, nil
}

func (s *availabilityService) UpdateRule(ctx context.Context, tutorID, ruleID string, req *dto.UpdateWeeklyRuleRequest) (*dto.WeeklyRuleResponse, error) {
	rule, err := s.repo.AvailabilityRule.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if rule.TutorID != tutorID {
		return nil, ErrForbidden
	}

	if req.DayOfWeek != nil {
		rule.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		rule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rule.EndTime = *req.EndTime
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	start, err := parseClock(rule.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeRange
	}
	end, err := parseClock(rule.EndTime)
	if err != nil || start >= end {
		return nil, ErrInvalidTimeRange
	}
	rule.UpdatedBy = &tutorID

	if err := s.repo.AvailabilityRule.Update(ctx, rule); err != nil {
		s.logger.Error("更新可用时间规则失败", zap.Error(err))
		return nil, err
	}
	return toWeeklyRuleResponse(rule), nil
}

func (s *availabilityService) DeleteRule(ctx context.Context, tutorID, ruleID string) error {
	rule, err := s.repo.AvailabilityRule.GetByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	if rule.TutorID != tutorID {
		return ErrForbidden
	}
	return s.repo.AvailabilityRule.Delete(ctx, ruleID, tutorID)
}

// ── 日期例外 ──

func (s *availabilityService) CreateException(ctx context.Context, tutorID string, req *dto.CreateExceptionRequest) (*dto.ExceptionResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	exc := &model.ScheduleException{
		TutorID:   tutorID,
		Date:      date,
		IsFullDay: req.IsFullDay,
		Reason:    req.Reason,
	}
	exc.CreatedBy = &tutorID
	exc.UpdatedBy = &tutorID

	// 部分例外必须携带有效时间区间
	if !req.IsFullDay {
		if req.StartTime == nil || req.EndTime == nil {
			return nil, ErrInvalidTimeRange
		}
		start, err := parseClock(*req.StartTime)
		if err != nil {
			return nil, ErrInvalidTimeRange
		}
		end, err := parseClock(*req.EndTime)
		if err != nil || start >= end {
			return nil, ErrInvalidTimeRange
		}
		exc.StartTime = req.StartTime
		exc.EndTime = req.EndTime
	}

	if err := s.repo.ScheduleException.Create(ctx, exc); err != nil {
		s.logger.Error("创建日期例外失败", zap.Error(err))
		return nil, err
	}
	return toExceptionResponse(exc), nil
}

func (s *availabilityService) ListExceptions(ctx context.Context, tutorID string) ([]dto.ExceptionResponse, error) {
	today := time.Now().Truncate(24 * time.Hour)
	exceptions, err := s.repo.ScheduleException.ListByTutor(ctx, tutorID, today)
	if err != nil {
		s.logger.Error("查询日期例外失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExceptionResponse, 0, len(exceptions))
	for i := range exceptions {
		result = append(result, *toExceptionResponse(&exceptions[i]))
	}
	return result, nil
}

func (s *availabilityService) DeleteException(ctx context.Context, tutorID, exceptionID string) error {
	exc, err := s.repo.ScheduleException.GetByID(ctx, exceptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExceptionNotFound
		}
		return err
	}
	if exc.TutorID != tutorID {
		return ErrForbidden
	}
	return s.repo.ScheduleException.Delete(ctx, exceptionID, tutorID)
}

// ── 时段派生 ──

// ResolveSlots 计算导师在指定日期的可预约时段
//
// 计算顺序：
//  1. 日期必须在 [今天, 今天+max_advance_days] 窗口内
//  2. 全天例外压制当天全部规则
//  3. 合并当天星期对应的重叠规则为连续窗口
//  4. 从窗口中扣除部分例外区间
//  5. 按课时长度（导师档案覆盖全局默认）切分定长时段
//  6. 已确认/待上课程与待处理申请占用的时段标记为不可约
//
// 时段为派生数据，不落库
func (s *availabilityService) ResolveSlots(ctx context.Context, tutorID, dateStr string) ([]dto.TimeSlotResponse, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// 1. 日期窗口检查
	now := time.Now()
	todayStr := now.Format("2006-01-02")
	maxStr := now.AddDate(0, 0, s.cfg.Booking.MaxAdvanceDays).Format("2006-01-02")
	if dateStr < todayStr || dateStr > maxStr {
		return nil, ErrInvalidDate
	}

	// 2. 导师存在性检查
	tutor, err := s.repo.User.GetByID(ctx, tutorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutorNotFound
		}
		s.logger.Error("查询导师失败", zap.Error(err))
		return nil, err
	}
	if tutor.Role != model.RoleTutor {
		return nil, ErrTutorNotFound
	}

	// 3. 日期例外：全天例外直接返回空集
	exceptions, err := s.repo.ScheduleException.ListByTutorAndDate(ctx, tutorID, date)
	if err != nil {
		s.logger.Error("查询日期例外失败", zap.Error(err))
		return nil, err
	}
	var blocked []clockRange
	for i := range exceptions {
		exc := &exceptions[i]
		if exc.IsFullDay {
			return []dto.TimeSlotResponse{}, nil
		}
		if exc.StartTime == nil || exc.EndTime == nil {
			continue
		}
		start, err1 := parseClock(*exc.StartTime)
		end, err2 := parseClock(*exc.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		blocked = append(blocked, clockRange{start: start, end: end})
	}

	// 4. 合并当天规则为连续窗口
	rules, err := s.repo.AvailabilityRule.ListActiveByTutorAndDay(ctx, tutorID, int(date.Weekday()))
	if err != nil {
		s.logger.Error("查询可用时间规则失败", zap.Error(err))
		return nil, err
	}
	var windows []clockRange
	for i := range rules {
		start, err1 := parseClock(rules[i].StartTime)
		end, err2 := parseClock(rules[i].EndTime)
		if err1 != nil || err2 != nil || start >= end {
			continue
		}
		windows = append(windows, clockRange{start: start, end: end})
	}
	windows = mergeRanges(windows)

	// 5. 扣除部分例外
	for _, b := range blocked {
		windows = subtractRange(windows, b)
	}
	if len(windows) == 0 {
		return []dto.TimeSlotResponse{}, nil
	}

	// 6. 课时长度：导师档案覆盖全局默认
	slotMinutes := s.cfg.Booking.SlotMinutes
	profile, err := s.repo.TutorProfile.GetByID(ctx, tutorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询导师档案失败", zap.Error(err))
		return nil, err
	}
	if profile != nil && profile.SlotMinutes > 0 {
		slotMinutes = profile.SlotMinutes
	}

	// 7. 收集占用区间：未取消课程 + 待处理申请
	busy, err := s.collectBusyRanges(ctx, s.repo, tutorID, date)
	if err != nil {
		return nil, err
	}

	// 8. 切分定长时段并标记占用
	// 当天已过（含最短提前量）的时段不可约
	cutoff := -1
	if dateStr == todayStr {
		cutoff = now.Hour()*60 + now.Minute() + s.cfg.Booking.MinLeadMinutes
	}

	slots := make([]dto.TimeSlotResponse, 0)
	for _, w := range windows {
		for start := w.start; start+slotMinutes <= w.end; start += slotMinutes {
			end := start + slotMinutes
			available := cutoff < 0 || start >= cutoff
			if available {
				for _, b := range busy {
					if start < b.end && b.start < end {
						available = false
						break
					}
				}
			}
			slots = append(slots, dto.TimeSlotResponse{
				SlotID:      fmt.Sprintf("%s:%s", dateStr, formatClock(start)),
				StartTime:   formatClock(start),
				EndTime:     formatClock(end),
				IsAvailable: available,
			})
		}
	}
	return slots, nil
}

// collectBusyRanges 汇总指定日期的占用区间（repo 参数允许事务内复查）
func (s *availabilityService) collectBusyRanges(ctx context.Context, repo *repository.Repository, tutorID string, date time.Time) ([]clockRange, error) {
	lessons, err := repo.Lesson.ListOccupyingByTutorAndDate(ctx, tutorID, date)
	if err != nil {
		s.logger.Error("查询课程占用失败", zap.Error(err))
		return nil, err
	}
	requests, err := repo.LessonRequest.ListPendingByTutorAndDate(ctx, tutorID, date)
	if err != nil {
		s.logger.Error("查询申请占用失败", zap.Error(err))
		return nil, err
	}

	busy := make([]clockRange, 0, len(lessons)+len(requests))
	for i := range lessons {
		start, err1 := parseClock(lessons[i].StartTime)
		end, err2 := parseClock(lessons[i].EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		busy = append(busy, clockRange{start: start, end: end})
	}
	for i := range requests {
		start, err1 := parseClock(requests[i].RequestedStartTime)
		end, err2 := parseClock(requests[i].RequestedEndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		busy = append(busy, clockRange{start: start, end: end})
	}
	return busy, nil
}

// ── 时钟区间工具 ──

// clockRange 以分钟表示的当日 [start, end) 区间
type clockRange struct {
	start int
	end   int
}

// parseClock 解析 "HH:MM" 为当日分钟数
func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("时间格式无效: %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("时间格式无效: %q", s)
	}
	return h*60 + m, nil
}

// formatClock 将当日分钟数格式化为 "HH:MM"
func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// normalizeClock 将时间字符串统一为定宽 "HH:MM"
// PostgreSQL time 列经驱动读回后携带秒与微秒（如 "11:00:00.000000"），
// 拼接占位键或对外输出前必须统一宽度；无法解析时原样返回
func normalizeClock(s string) string {
	minutes, err := parseClock(s)
	if err != nil {
		return s
	}
	return formatClock(minutes)
}

// mergeRanges 合并重叠或相邻的区间，返回按起点升序的不相交区间
func mergeRanges(ranges []clockRange) []clockRange {
	if len(ranges) == 0 {
		return nil
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

	merged := []clockRange{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// subtractRange 从区间集合中扣除 b，可能拆分出前后两段
func subtractRange(ranges []clockRange, b clockRange) []clockRange {
	result := make([]clockRange, 0, len(ranges))
	for _, r := range ranges {
		if b.end <= r.start || r.end <= b.start {
			result = append(result, r)
			continue
		}
		if r.start < b.start {
			result = append(result, clockRange{start: r.start, end: b.start})
		}
		if b.end < r.end {
			result = append(result, clockRange{start: b.end, end: r.end})
		}
	}
	return result
}

func toWeeklyRuleResponse(rule *model.WeeklyAvailabilityRule) *dto.WeeklyRuleResponse {
	return &dto.WeeklyRuleResponse{
		ID:        rule.RuleID,
		TutorID:   rule.TutorID,
		DayOfWeek: rule.DayOfWeek,
		StartTime: normalizeClock(rule.StartTime),
		EndTime:   normalizeClock(rule.EndTime),
		IsActive:  rule.IsActive,
		CreatedAt: rule.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: rule.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toExceptionResponse(exc *model.ScheduleException) *dto.ExceptionResponse {
	resp := &dto.ExceptionResponse{
		ID:        exc.ExceptionID,
		TutorID:   exc.TutorID,
		Date:      exc.Date.Format("2006-01-02"),
		IsFullDay: exc.IsFullDay,
		Reason:    exc.Reason,
		CreatedAt: exc.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if exc.StartTime != nil {
		start := normalizeClock(*exc.StartTime)
		resp.StartTime = &start
	}
	if exc.EndTime != nil {
		end := normalizeClock(*exc.EndTime)
		resp.EndTime = &end
	}
	return resp
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classconnect/backend/config"
	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
	"classconnect/backend/pkg/redis"
)

var (
	ErrRequestNotFound = errors.New("预约申请不存在")
	ErrSlotUnavailable = errors.New("该时段不在导师可用时间内")
	ErrSlotTaken       = errors.New("该时段已被占用")
	ErrRequestClosed   = errors.New("申请已处理，当前状态不允许该操作")
	ErrSelfBooking     = errors.New("不能预约自己的课程")
)

// BookingService 预约业务接口
// 学生提交申请，导师接受/拒绝，学生在待处理时可取消
type BookingService interface {
	CreateRequest(ctx context.Context, studentID string, req *dto.CreateLessonRequestRequest) (*dto.LessonRequestResponse, error)
	Respond(ctx context.Context, tutorID, requestID string, req *dto.RespondLessonRequestRequest) (*dto.LessonRequestResponse, error)
	Cancel(ctx context.Context, studentID, requestID string) (*dto.LessonRequestResponse, error)
	GetByID(ctx context.Context, callerID, requestID string) (*dto.LessonRequestResponse, error)
	ListForTutor(ctx context.Context, tutorID string, req *dto.LessonRequestListRequest) (*dto.LessonRequestListResponse, error)
	ListForStudent(ctx context.Context, studentID string, req *dto.LessonRequestListRequest) (*dto.LessonRequestListResponse, error)
}

type bookingService struct {
	cfg          *config.Config
	repo         *repository.Repository
	rdb          *redis.Client
	availability AvailabilityService
	notification NotificationService
	logger       *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	availability AvailabilityService,
	notification NotificationService,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		cfg:          cfg,
		repo:         repo,
		rdb:          rdb,
		availability: availability,
		notification: notification,
		logger:       logger,
	}
}

// CreateRequest 学生提交预约申请
//
// 并发安全分三层：
//  1. Redis SetNX 时段占位，拦截同一时段的并发提交
//  2. 事务内按导师+日期重查课程与待处理申请的占用
//  3. lesson_requests 上的部分唯一索引兜底（同导师同时段仅一条 pending）
func (s *bookingService) CreateRequest(ctx context.Context, studentID string, req *dto.CreateLessonRequestRequest) (*dto.LessonRequestResponse, error) {
	if req.TutorID == studentID {
		return nil, ErrSelfBooking
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// 1. 科目必须存在且启用
	subject, err := s.repo.Subject.GetByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, err
	}
	if !subject.IsActive {
		return nil, ErrUnknownSubject
	}

	// 2. 申请区间必须与派生时段精确对齐且可约
	// ResolveSlots 同时完成日期窗口与导师存在性校验
	slots, err := s.availability.ResolveSlots(ctx, req.TutorID, req.Date)
	if err != nil {
		return nil, err
	}
	matched := false
	for _, slot := range slots {
		if slot.StartTime == req.StartTime && slot.EndTime == req.EndTime {
			if !slot.IsAvailable {
				return nil, ErrSlotTaken
			}
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrSlotUnavailable
	}

	// 3. Redis 时段占位（Redis 不可用时降级到事务重查）
	if s.rdb != nil {
		held, err := s.rdb.HoldSlot(ctx, req.TutorID, req.Date, req.StartTime, studentID, s.cfg.Booking.HoldTTL)
		if err != nil {
			s.logger.Warn("时段占位失败，降级到事务校验", zap.Error(err))
		} else if !held {
			return nil, ErrSlotTaken
		}
	}

	// 4. 事务内重查占用后落库
	request := &model.LessonRequest{
		TutorID:            req.TutorID,
		StudentID:          studentID,
		SubjectID:          req.SubjectID,
		RequestedDate:      date,
		RequestedStartTime: req.StartTime,
		RequestedEndTime:   req.EndTime,
		Message:            req.Message,
		Status:             model.RequestStatusPending,
	}
	request.CreatedBy = &studentID
	request.UpdatedBy = &studentID

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		conflict, err := hasOverlap(ctx, txRepo, req.TutorID, date, req.StartTime, req.EndTime)
		if err != nil {
			return err
		}
		if conflict {
			return ErrSlotTaken
		}
		return txRepo.LessonRequest.Create(ctx, request)
	})
	if err != nil {
		s.releaseHold(ctx, req.TutorID, req.Date, req.StartTime)
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrSlotTaken
		}
		s.logger.Error("创建预约申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("预约申请已创建",
		zap.String("request_id", request.RequestID),
		zap.String("tutor_id", req.TutorID),
		zap.String("student_id", studentID))

	// 5. 通知导师（尽力而为）
	s.notification.Notify(ctx, req.TutorID,
		model.NotificationTypeRequestCreated,
		"收到新的预约申请",
		fmt.Sprintf("%s %s-%s 有新的预约申请", req.Date, req.StartTime, req.EndTime),
		"lesson_request", request.RequestID)

	return s.loadRequestResponse(ctx, request.RequestID)
}

// Respond 导师接受或拒绝预约申请；接受时在同一事务内生成已确认课程
func (s *bookingService) Respond(ctx context.Context, tutorID, requestID string, req *dto.RespondLessonRequestRequest) (*dto.LessonRequestResponse, error) {
	var request *model.LessonRequest

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		var err error
		request, err = txRepo.LessonRequest.GetByID(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.TutorID != tutorID {
			return ErrForbidden
		}

		target := model.RequestStatusRejected
		if req.Accept {
			target = model.RequestStatusAccepted
		}
		if !request.CanTransitionTo(target) {
			return ErrRequestClosed
		}

		if req.Accept {
			// 接受前重查课程占用：同时段已有课程则无法接受
			// 只查课程（待处理申请里有本条自身）；比较折算为分钟，见 hasOverlap
			reqStart, err := parseClock(request.RequestedStartTime)
			if err != nil {
				return err
			}
			reqEnd, err := parseClock(request.RequestedEndTime)
			if err != nil {
				return err
			}
			lessons, err := txRepo.Lesson.ListOccupyingByTutorAndDate(ctx, tutorID, request.RequestedDate)
			if err != nil {
				return err
			}
			for i := range lessons {
				ls, err1 := parseClock(lessons[i].StartTime)
				le, err2 := parseClock(lessons[i].EndTime)
				if err1 != nil || err2 != nil {
					continue
				}
				if reqStart < le && ls < reqEnd {
					return ErrSlotTaken
				}
			}

			lesson := &model.Lesson{
				TutorID:   request.TutorID,
				StudentID: request.StudentID,
				SubjectID: request.SubjectID,
				Date:      request.RequestedDate,
				StartTime: normalizeClock(request.RequestedStartTime),
				EndTime:   normalizeClock(request.RequestedEndTime),
				Status:    model.LessonStatusConfirmed,
			}
			lesson.CreatedBy = &tutorID
			lesson.UpdatedBy = &tutorID
			if err := txRepo.Lesson.Create(ctx, lesson); err != nil {
				return err
			}
			request.LessonID = &lesson.LessonID
		}

		request.Status = target
		request.TutorResponse = req.Response
		request.UpdatedBy = &tutorID
		return txRepo.LessonRequest.Update(ctx, request)
	})
	if err != nil {
		if errors.Is(err, ErrRequestNotFound) || errors.Is(err, ErrForbidden) ||
			errors.Is(err, ErrRequestClosed) || errors.Is(err, ErrSlotTaken) {
			return nil, err
		}
		s.logger.Error("响应预约申请失败", zap.Error(err))
		return nil, err
	}

	s.releaseHold(ctx, request.TutorID, request.RequestedDate.Format("2006-01-02"), request.RequestedStartTime)

	// 通知学生
	if req.Accept {
		s.notification.Notify(ctx, request.StudentID,
			model.NotificationTypeRequestAccepted,
			"预约申请已接受",
			fmt.Sprintf("导师已接受你 %s %s-%s 的预约", request.RequestedDate.Format("2006-01-02"), normalizeClock(request.RequestedStartTime), normalizeClock(request.RequestedEndTime)),
			"lesson_request", request.RequestID)
	} else {
		s.notification.Notify(ctx, request.StudentID,
			model.NotificationTypeRequestRejected,
			"预约申请已拒绝",
			fmt.Sprintf("导师已拒绝你 %s %s-%s 的预约", request.RequestedDate.Format("2006-01-02"), normalizeClock(request.RequestedStartTime), normalizeClock(request.RequestedEndTime)),
			"lesson_request", request.RequestID)
	}

	return s.loadRequestResponse(ctx, request.RequestID)
}

// Cancel 学生取消待处理的预约申请
func (s *bookingService) Cancel(ctx context.Context, studentID, requestID string) (*dto.LessonRequestResponse, error) {
	request, err := s.repo.LessonRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if request.StudentID != studentID {
		return nil, ErrForbidden
	}
	if !request.CanTransitionTo(model.RequestStatusCancelled) {
		return nil, ErrRequestClosed
	}

	request.Status = model.RequestStatusCancelled
	request.UpdatedBy = &studentID
	if err := s.repo.LessonRequest.Update(ctx, request); err != nil {
		s.logger.Error("取消预约申请失败", zap.Error(err))
		return nil, err
	}

	s.releaseHold(ctx, request.TutorID, request.RequestedDate.Format("2006-01-02"), request.RequestedStartTime)
	return toLessonRequestResponse(request), nil
}

func (s *bookingService) GetByID(ctx context.Context, callerID, requestID string) (*dto.LessonRequestResponse, error) {
	request, err := s.repo.LessonRequest.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	// 仅申请双方可见
	if request.TutorID != callerID && request.StudentID != callerID {
		return nil, ErrForbidden
	}
	return toLessonRequestResponse(request), nil
}

func (s *bookingService) ListForTutor(ctx context.Context, tutorID string, req *dto.LessonRequestListRequest) (*dto.LessonRequestListResponse, error) {
	requests, total, err := s.repo.LessonRequest.ListByTutor(ctx, tutorID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约申请列表失败", zap.Error(err))
		return nil, err
	}
	return buildRequestList(requests, total, req), nil
}

func (s *bookingService) ListForStudent(ctx context.Context, studentID string, req *dto.LessonRequestListRequest) (*dto.LessonRequestListResponse, error) {
	requests, total, err := s.repo.LessonRequest.ListByStudent(ctx, studentID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约申请列表失败", zap.Error(err))
		return nil, err
	}
	return buildRequestList(requests, total, req), nil
}

// releaseHold 释放 Redis 时段占位（失败只记日志）
// startTime 可能是数据库读回的带秒格式，统一后才能命中占位键
func (s *bookingService) releaseHold(ctx context.Context, tutorID, date, startTime string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.ReleaseSlot(ctx, tutorID, date, normalizeClock(startTime)); err != nil {
		s.logger.Warn("释放时段占位失败", zap.Error(err))
	}
}

func (s *bookingService) loadRequestResponse(ctx context.Context, requestID string) (*dto.LessonRequestResponse, error) {
	request, err := s.repo.LessonRequest.GetByID(ctx, requestID)
	if err != nil {
		s.logger.Error("查询预约申请失败", zap.Error(err))
		return nil, err
	}
	return toLessonRequestResponse(request), nil
}

// hasOverlap 检查区间是否与导师当日的课程或待处理申请重叠
// 比较一律折算为分钟：数据库读回的时间串带秒与微秒，按字典序
// 直接比较会把相邻时段误判为重叠
func hasOverlap(ctx context.Context, repo *repository.Repository, tutorID string, date time.Time, startTime, endTime string) (bool, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return false, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return false, err
	}

	lessons, err := repo.Lesson.ListOccupyingByTutorAndDate(ctx, tutorID, date)
	if err != nil {
		return false, err
	}
	for i := range lessons {
		ls, err1 := parseClock(lessons[i].StartTime)
		le, err2 := parseClock(lessons[i].EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if start < le && ls < end {
			return true, nil
		}
	}

	requests, err := repo.LessonRequest.ListPendingByTutorAndDate(ctx, tutorID, date)
	if err != nil {
		return false, err
	}
	for i := range requests {
		rs, err1 := parseClock(requests[i].RequestedStartTime)
		re, err2 := parseClock(requests[i].RequestedEndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if start < re && rs < end {
			return true, nil
		}
	}
	return false, nil
}

func buildRequestList(requests []model.LessonRequest, total int64, req *dto.LessonRequestListRequest) *dto.LessonRequestListResponse {
	items := make([]dto.LessonRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *toLessonRequestResponse(&requests[i]))
	}
	return &dto.LessonRequestListResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    items,
	}
}

func toLessonRequestResponse(request *model.LessonRequest) *dto.LessonRequestResponse {
	resp := &dto.LessonRequestResponse{
		ID:            request.RequestID,
		Date:          request.RequestedDate.Format("2006-01-02"),
		StartTime:     normalizeClock(request.RequestedStartTime),
		EndTime:       normalizeClock(request.RequestedEndTime),
		Message:       request.Message,
		Status:        request.Status,
		TutorResponse: request.TutorResponse,
		LessonID:      request.LessonID,
		CreatedAt:     request.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     request.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if request.Tutor != nil {
		resp.Tutor = &dto.UserBrief{ID: request.Tutor.UserID, Name: request.Tutor.Name}
	}
	if request.Student != nil {
		resp.Student = &dto.UserBrief{ID: request.Student.UserID, Name: request.Student.Name}
	}
	if request.Subject != nil {
		resp.Subject = &dto.SubjectBrief{ID: request.Subject.SubjectID, Name: request.Subject.Name}
	}
	return resp
}

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
)

// ── 测试辅助 ──

type bookingTestWorld struct {
	svc     BookingService
	mocks   *testRepos
	tutor   *model.User
	student *model.User
	subject *model.Subject
	dateStr string
}

// setupBookingWorld 构造一个可预约的最小世界：导师 + 学生 + 启用科目 + 09:00-12:00 规则
func setupBookingWorld(t *testing.T) *bookingTestWorld {
	t.Helper()
	cfg := testConfig()
	repo, mocks := newTestRepos()
	logger := zap.NewNop()

	notification := NewNotificationService(repo, logger)
	availability := NewAvailabilityService(cfg, repo, logger)
	svc := NewBookingService(cfg, repo, nil, availability, notification, logger)

	tutor := &model.User{Name: "王老师", Email: "wang@example.com", Role: model.RoleTutor}
	_ = mocks.user.Create(context.Background(), tutor)
	student := &model.User{Name: "小明", Email: "ming@example.com", Role: model.RoleStudent}
	_ = mocks.user.Create(context.Background(), student)

	subject := &model.Subject{Name: "数学", IsActive: true}
	_ = mocks.subject.Create(context.Background(), subject)

	dateStr, dow := futureDate(7)
	addRule(mocks, tutor.UserID, dow, "09:00", "12:00")

	return &bookingTestWorld{
		svc:     svc,
		mocks:   mocks,
		tutor:   tutor,
		student: student,
		subject: subject,
		dateStr: dateStr,
	}
}

func (w *bookingTestWorld) createRequest(t *testing.T, start, end string) *dto.LessonRequestResponse {
	t.Helper()
	resp, err := w.svc.CreateRequest(context.Background(), w.student.UserID, &dto.CreateLessonRequestRequest{
		TutorID:   w.tutor.UserID,
		SubjectID: w.subject.SubjectID,
		Date:      w.dateStr,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		t.Fatalf("CreateRequest 应成功，但返回错误: %v", err)
	}
	return resp
}

// ── 创建申请测试 ──

func TestCreateRequest_Success(t *testing.T) {
	w := setupBookingWorld(t)

	resp := w.createRequest(t, "09:00", "10:00")
	if resp.Status != model.RequestStatusPending {
		t.Errorf("新申请状态应为 pending: got %s", resp.Status)
	}
	if resp.LessonID != nil {
		t.Error("未接受的申请不应关联课程")
	}
	if w.mocks.notification.countFor(w.tutor.UserID) != 1 {
		t.Error("创建申请后应通知导师")
	}
}

func TestCreateRequest_SelfBooking(t *testing.T) {
	w := setupBookingWorld(t)

	_, err := w.svc.CreateRequest(context.Background(), w.tutor.UserID, &dto.CreateLessonRequestRequest{
		TutorID:   w.tutor.UserID,
		SubjectID: w.subject.SubjectID,
		Date:      w.dateStr,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if !errors.Is(err, ErrSelfBooking) {
		t.Errorf("预约自己应返回 ErrSelfBooking, got: %v", err)
	}
}

func TestCreateRequest_InactiveSubject(t *testing.T) {
	w := setupBookingWorld(t)
	w.subject.IsActive = false

	_, err := w.svc.CreateRequest(context.Background(), w.student.UserID, &dto.CreateLessonRequestRequest{
		TutorID:   w.tutor.UserID,
		SubjectID: w.subject.SubjectID,
		Date:      w.dateStr,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("停用科目应返回 ErrUnknownSubject, got: %v", err)
	}
}

func TestCreateRequest_SlotMisaligned(t *testing.T) {
	w := setupBookingWorld(t)

	// 区间未与派生时段对齐
	_, err := w.svc.CreateRequest(context.Background(), w.student.UserID, &dto.CreateLessonRequestRequest{
		TutorID:   w.tutor.UserID,
		SubjectID: w.subject.SubjectID,
		Date:      w.dateStr,
		StartTime: "09:30",
		EndTime:   "10:30",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("未对齐时段应返回 ErrSlotUnavailable, got: %v", err)
	}
}

func TestCreateRequest_SlotTaken(t *testing.T) {
	w := setupBookingWorld(t)
	w.createRequest(t, "09:00", "10:00")

	// 第二个学生抢同一时段
	other := &model.User{Name: "小红", Email: "hong@example.com", Role: model.RoleStudent}
	_ = w.mocks.user.Create(context.Background(), other)

	_, err := w.svc.CreateRequest(context.Background(), other.UserID, &dto.CreateLessonRequestRequest{
		TutorID:   w.tutor.UserID,
		SubjectID: w.subject.SubjectID,
		Date:      w.dateStr,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("已被占用的时段应返回 ErrSlotTaken, got: %v", err)
	}
}

// ── 导师响应测试 ──

func TestRespond_AcceptCreatesLesson(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	resp, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{
		Accept:   true,
		Response: "没问题",
	})
	if err != nil {
		t.Fatalf("Respond 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.RequestStatusAccepted {
		t.Errorf("申请状态应为 accepted: got %s", resp.Status)
	}
	if resp.LessonID == nil {
		t.Fatal("接受申请后应关联生成的课程")
	}

	lesson, err := w.mocks.lesson.GetByID(context.Background(), *resp.LessonID)
	if err != nil {
		t.Fatalf("查询生成的课程失败: %v", err)
	}
	if lesson.Status != model.LessonStatusConfirmed {
		t.Errorf("生成的课程应为 confirmed: got %s", lesson.Status)
	}
	if lesson.StartTime != "09:00" || lesson.EndTime != "10:00" {
		t.Errorf("课程时间不匹配: %s-%s", lesson.StartTime, lesson.EndTime)
	}
	if w.mocks.notification.countFor(w.student.UserID) != 1 {
		t.Error("接受申请后应通知学生")
	}
}

func TestRespond_RejectLeavesNoLesson(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	resp, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{
		Accept:   false,
		Response: "时间冲突",
	})
	if err != nil {
		t.Fatalf("Respond 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.RequestStatusRejected {
		t.Errorf("申请状态应为 rejected: got %s", resp.Status)
	}
	if resp.LessonID != nil {
		t.Error("拒绝申请不应生成课程")
	}
	if len(w.mocks.lesson.lessons) != 0 {
		t.Error("拒绝申请不应留下课程记录")
	}
}

func TestRespond_NotOwner(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	_, err := w.svc.Respond(context.Background(), "someone-else", req.ID, &dto.RespondLessonRequestRequest{Accept: true})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("非目标导师响应应返回 ErrForbidden, got: %v", err)
	}
}

func TestRespond_AlreadyHandled(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	if _, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{Accept: true}); err != nil {
		t.Fatalf("首次响应应成功: %v", err)
	}

	_, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{Accept: false})
	if !errors.Is(err, ErrRequestClosed) {
		t.Errorf("重复响应应返回 ErrRequestClosed, got: %v", err)
	}
}

func TestRespond_ConflictingLesson(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	// 接受前同时段已另有课程
	_ = w.mocks.lesson.Create(context.Background(), &model.Lesson{
		TutorID:   w.tutor.UserID,
		StudentID: "someone-else",
		SubjectID: w.subject.SubjectID,
		Date:      mustParseDate(t, w.dateStr),
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    model.LessonStatusConfirmed,
	})

	_, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{Accept: true})
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("时段已被课程占用时接受应返回 ErrSlotTaken, got: %v", err)
	}
}

// ── 学生取消测试 ──

func TestCancel_Success(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	resp, err := w.svc.Cancel(context.Background(), w.student.UserID, req.ID)
	if err != nil {
		t.Fatalf("Cancel 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.RequestStatusCancelled {
		t.Errorf("取消后的状态应为 cancelled: got %s", resp.Status)
	}
}

func TestCancel_NotOwner(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	if _, err := w.svc.Cancel(context.Background(), w.tutor.UserID, req.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("非申请人取消应返回 ErrForbidden, got: %v", err)
	}
}

func TestCancel_AfterResponse(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	if _, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{Accept: true}); err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}

	if _, err := w.svc.Cancel(context.Background(), w.student.UserID, req.ID); !errors.Is(err, ErrRequestClosed) {
		t.Errorf("已接受的申请不能取消, got: %v", err)
	}
}

// ── 取消释放时段测试 ──

func TestCancelledRequestFreesSlot(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	if _, err := w.svc.Cancel(context.Background(), w.student.UserID, req.ID); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	// 取消后同一时段可再次申请
	resp := w.createRequest(t, "09:00", "10:00")
	if resp.Status != model.RequestStatusPending {
		t.Errorf("取消后重新申请应成功: got %s", resp.Status)
	}
}

// ── 查看与列表测试 ──

func TestGetByID_OnlyParticipants(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "09:00", "10:00")

	if _, err := w.svc.GetByID(context.Background(), w.student.UserID, req.ID); err != nil {
		t.Errorf("申请人应可查看: %v", err)
	}
	if _, err := w.svc.GetByID(context.Background(), w.tutor.UserID, req.ID); err != nil {
		t.Errorf("目标导师应可查看: %v", err)
	}
	if _, err := w.svc.GetByID(context.Background(), "outsider", req.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("旁观者不应可见, got: %v", err)
	}
}

func TestListForStudent_FilterByStatus(t *testing.T) {
	w := setupBookingWorld(t)
	first := w.createRequest(t, "09:00", "10:00")
	w.createRequest(t, "10:00", "11:00")

	if _, err := w.svc.Cancel(context.Background(), w.student.UserID, first.ID); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	list, err := w.svc.ListForStudent(context.Background(), w.student.UserID, &dto.LessonRequestListRequest{
		Status: model.RequestStatusPending,
	})
	if err != nil {
		t.Fatalf("ListForStudent 应成功: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Errorf("状态过滤结果不匹配: total=%d items=%d", list.Total, len(list.Items))
	}
}

// ── 数据库读回时间格式测试 ──
// PostgreSQL time 列经驱动读回后带秒与微秒（"11:00:00.000000"），
// 占用比较与对外输出都必须容忍这种格式

func TestCreateRequest_AdjacentToLessonInDBTimeFormat(t *testing.T) {
	w := setupBookingWorld(t)

	_ = w.mocks.lesson.Create(context.Background(), &model.Lesson{
		TutorID:   w.tutor.UserID,
		StudentID: "someone-else",
		SubjectID: w.subject.SubjectID,
		Date:      mustParseDate(t, w.dateStr),
		StartTime: "10:00:00.000000",
		EndTime:   "11:00:00.000000",
		Status:    model.LessonStatusConfirmed,
	})

	// 紧邻已有课程的下一时段仍可预约
	resp := w.createRequest(t, "11:00", "12:00")
	if resp.Status != model.RequestStatusPending {
		t.Errorf("相邻时段申请应成功: got %s", resp.Status)
	}

	// 与课程重叠的时段照常拒绝
	_, err := w.svc.CreateRequest(context.Background(), w.student.UserID, &dto.CreateLessonRequestRequest{
		TutorID:   w.tutor.UserID,
		SubjectID: w.subject.SubjectID,
		Date:      w.dateStr,
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Errorf("重叠时段应返回 ErrSlotTaken, got: %v", err)
	}
}

func TestCreateRequest_AdjacentToPendingRequestInDBTimeFormat(t *testing.T) {
	w := setupBookingWorld(t)

	_ = w.mocks.lessonRequest.Create(context.Background(), &model.LessonRequest{
		StudentID:          "someone-else",
		TutorID:            w.tutor.UserID,
		SubjectID:          w.subject.SubjectID,
		RequestedDate:      mustParseDate(t, w.dateStr),
		RequestedStartTime: "09:00:00.000000",
		RequestedEndTime:   "10:00:00.000000",
		Status:             model.RequestStatusPending,
	})

	resp := w.createRequest(t, "10:00", "11:00")
	if resp.Status != model.RequestStatusPending {
		t.Errorf("相邻时段申请应成功: got %s", resp.Status)
	}
}

func TestRespond_AcceptWithLessonInDBTimeFormat(t *testing.T) {
	w := setupBookingWorld(t)
	req := w.createRequest(t, "11:00", "12:00")

	// 申请入库后读回为带秒格式
	stored, err := w.mocks.lessonRequest.GetByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("查询申请失败: %v", err)
	}
	stored.RequestedStartTime = "11:00:00.000000"
	stored.RequestedEndTime = "12:00:00.000000"

	_ = w.mocks.lesson.Create(context.Background(), &model.Lesson{
		TutorID:   w.tutor.UserID,
		StudentID: "someone-else",
		SubjectID: w.subject.SubjectID,
		Date:      mustParseDate(t, w.dateStr),
		StartTime: "10:00:00.000000",
		EndTime:   "11:00:00.000000",
		Status:    model.LessonStatusConfirmed,
	})

	resp, err := w.svc.Respond(context.Background(), w.tutor.UserID, req.ID, &dto.RespondLessonRequestRequest{Accept: true})
	if err != nil {
		t.Fatalf("相邻课程不应阻止接受申请: %v", err)
	}
	// 响应与生成的课程都输出统一的 "HH:MM"
	if resp.StartTime != "11:00" || resp.EndTime != "12:00" {
		t.Errorf("响应时间应统一为 HH:MM: %s-%s", resp.StartTime, resp.EndTime)
	}
	if resp.LessonID == nil {
		t.Fatal("接受申请后应关联生成的课程")
	}
	lesson, err := w.mocks.lesson.GetByID(context.Background(), *resp.LessonID)
	if err != nil {
		t.Fatalf("查询生成的课程失败: %v", err)
	}
	if lesson.StartTime != "11:00" || lesson.EndTime != "12:00" {
		t.Errorf("生成课程的时间应统一为 HH:MM: %s-%s", lesson.StartTime, lesson.EndTime)
	}
}

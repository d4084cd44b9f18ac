package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestLessonService() (LessonService, *testRepos) {
	repo, mocks := newTestRepos()
	logger := zap.NewNop()
	notification := NewNotificationService(repo, logger)
	svc := NewLessonService(repo, notification, logger)
	return svc, mocks
}

func createTestLesson(mocks *testRepos, tutorID, studentID, status string) *model.Lesson {
	lesson := &model.Lesson{
		TutorID:   tutorID,
		StudentID: studentID,
		SubjectID: "subject-1",
		Date:      time.Now().AddDate(0, 0, 7),
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    status,
	}
	_ = mocks.lesson.Create(context.Background(), lesson)
	return lesson
}

// ── 状态迁移测试 ──

func TestUpdateStatus_TutorConfirms(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusPending)

	resp, err := svc.UpdateStatus(context.Background(), "tutor-1", model.RoleTutor, lesson.LessonID,
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusConfirmed})
	if err != nil {
		t.Fatalf("UpdateStatus 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.LessonStatusConfirmed {
		t.Errorf("状态不匹配: got %s, want confirmed", resp.Status)
	}
}

func TestUpdateStatus_TutorCompletes(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	resp, err := svc.UpdateStatus(context.Background(), "tutor-1", model.RoleTutor, lesson.LessonID,
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCompleted})
	if err != nil {
		t.Fatalf("UpdateStatus 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.LessonStatusCompleted {
		t.Errorf("状态不匹配: got %s, want completed", resp.Status)
	}
}

func TestUpdateStatus_StudentCannotComplete(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	_, err := svc.UpdateStatus(context.Background(), "student-1", model.RoleStudent, lesson.LessonID,
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCompleted})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("学生不能标记完成, got: %v", err)
	}
}

func TestUpdateStatus_StudentCancelsAndNotifiesTutor(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	resp, err := svc.UpdateStatus(context.Background(), "student-1", model.RoleStudent, lesson.LessonID,
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCancelled})
	if err != nil {
		t.Fatalf("UpdateStatus 应成功，但返回错误: %v", err)
	}
	if resp.Status != model.LessonStatusCancelled {
		t.Errorf("状态不匹配: got %s, want cancelled", resp.Status)
	}
	if mocks.notification.countFor("tutor-1") != 1 {
		t.Error("学生取消课程后应通知导师")
	}
}

func TestUpdateStatus_TerminalStateIsReadOnly(t *testing.T) {
	svc, mocks := setupTestLessonService()

	for _, status := range []string{model.LessonStatusCompleted, model.LessonStatusCancelled} {
		lesson := createTestLesson(mocks, "tutor-1", "student-1", status)
		_, err := svc.UpdateStatus(context.Background(), "tutor-1", model.RoleTutor, lesson.LessonID,
			&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCancelled})
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s 为终态，应返回 ErrInvalidTransition, got: %v", status, err)
		}
	}
}

func TestUpdateStatus_PendingCannotComplete(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusPending)

	_, err := svc.UpdateStatus(context.Background(), "tutor-1", model.RoleTutor, lesson.LessonID,
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCompleted})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending 不能直接完成, got: %v", err)
	}
}

func TestUpdateStatus_Outsider(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	_, err := svc.UpdateStatus(context.Background(), "outsider", model.RoleTutor, lesson.LessonID,
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCancelled})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("非课程双方不能操作, got: %v", err)
	}
}

func TestUpdateStatus_LessonNotFound(t *testing.T) {
	svc, _ := setupTestLessonService()

	_, err := svc.UpdateStatus(context.Background(), "tutor-1", model.RoleTutor, "missing",
		&dto.UpdateLessonStatusRequest{Status: model.LessonStatusCancelled})
	if !errors.Is(err, ErrLessonNotFound) {
		t.Errorf("课程不存在应返回 ErrLessonNotFound, got: %v", err)
	}
}

// ── 查看与列表测试 ──

func TestLessonGetByID_OnlyParticipants(t *testing.T) {
	svc, mocks := setupTestLessonService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	if _, err := svc.GetByID(context.Background(), "tutor-1", lesson.LessonID); err != nil {
		t.Errorf("导师应可查看: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "student-1", lesson.LessonID); err != nil {
		t.Errorf("学生应可查看: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "outsider", lesson.LessonID); !errors.Is(err, ErrForbidden) {
		t.Errorf("旁观者不应可见, got: %v", err)
	}
}

func TestListForTutor_InvalidDateFilter(t *testing.T) {
	svc, _ := setupTestLessonService()

	_, err := svc.ListForTutor(context.Background(), "tutor-1", &dto.LessonListRequest{From: "not-a-date"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("非法日期过滤应返回 ErrInvalidDate, got: %v", err)
	}
}

func TestListForTutor_StatusFilter(t *testing.T) {
	svc, mocks := setupTestLessonService()
	createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)
	createTestLesson(mocks, "tutor-1", "student-2", model.LessonStatusCancelled)

	list, err := svc.ListForTutor(context.Background(), "tutor-1", &dto.LessonListRequest{
		Status: model.LessonStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("ListForTutor 应成功: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Errorf("状态过滤结果不匹配: total=%d items=%d", list.Total, len(list.Items))
	}
}

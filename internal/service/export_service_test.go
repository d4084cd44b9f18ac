package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
)

func setupTestExportService() (ExportService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewExportService(repo, zap.NewNop())
	return svc, mocks
}

func TestExportLessons_Success(t *testing.T) {
	svc, mocks := setupTestExportService()
	createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	buf, filename, err := svc.ExportLessons(context.Background(), "tutor-1", &dto.LessonListRequest{})
	if err != nil {
		t.Fatalf("ExportLessons 应成功，但返回错误: %v", err)
	}
	if buf == nil || buf.Len() == 0 {
		t.Error("导出内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应为 xlsx: %s", filename)
	}
}

func TestExportLessons_NoLessons(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportLessons(context.Background(), "tutor-1", &dto.LessonListRequest{})
	if !errors.Is(err, ErrExportNoLessons) {
		t.Errorf("无课程可导出应返回 ErrExportNoLessons, got: %v", err)
	}
}

func TestExportCalendar_SkipsCancelled(t *testing.T) {
	svc, mocks := setupTestExportService()
	confirmed := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)
	cancelled := createTestLesson(mocks, "tutor-1", "student-2", model.LessonStatusCancelled)

	ical, err := svc.ExportCalendar(context.Background(), "tutor-1", model.RoleTutor)
	if err != nil {
		t.Fatalf("ExportCalendar 应成功，但返回错误: %v", err)
	}
	if !strings.Contains(ical, "BEGIN:VCALENDAR") {
		t.Error("输出应为 ICS 日历")
	}
	if !strings.Contains(ical, confirmed.LessonID+"@classconnect") {
		t.Error("已确认课程应出现在日历中")
	}
	if strings.Contains(ical, cancelled.LessonID+"@classconnect") {
		t.Error("已取消课程不应出现在日历中")
	}
}

func TestExportCalendar_StudentView(t *testing.T) {
	svc, mocks := setupTestExportService()
	lesson := createTestLesson(mocks, "tutor-1", "student-1", model.LessonStatusConfirmed)

	ical, err := svc.ExportCalendar(context.Background(), "student-1", model.RoleStudent)
	if err != nil {
		t.Fatalf("ExportCalendar 应成功，但返回错误: %v", err)
	}
	if !strings.Contains(ical, lesson.LessonID+"@classconnect") {
		t.Error("学生视角应包含自己的课程")
	}
}

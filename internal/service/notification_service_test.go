package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
)

func setupTestNotificationService() (NotificationService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewNotificationService(repo, zap.NewNop())
	return svc, mocks
}

func TestNotify_WritesNotification(t *testing.T) {
	svc, mocks := setupTestNotificationService()

	svc.Notify(context.Background(), "user-1",
		model.NotificationTypeRequestCreated,
		"收到新的预约申请", "内容",
		"lesson_request", "request-1")

	if mocks.notification.countFor("user-1") != 1 {
		t.Fatal("Notify 应写入通知")
	}
	n := mocks.notification.notifications[0]
	if n.RelatedType == nil || *n.RelatedType != "lesson_request" {
		t.Errorf("关联类型不匹配: %+v", n.RelatedType)
	}
}

func TestList_UnreadOnly(t *testing.T) {
	svc, mocks := setupTestNotificationService()
	svc.Notify(context.Background(), "user-1", model.NotificationTypeRequestCreated, "一", "内容", "", "")
	svc.Notify(context.Background(), "user-1", model.NotificationTypeRequestAccepted, "二", "内容", "", "")
	mocks.notification.notifications[0].IsRead = true

	resp, err := svc.List(context.Background(), "user-1", &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("List 应成功，但返回错误: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("未读过滤结果不匹配: total=%d", resp.Total)
	}
}

func TestMarkRead_NotFound(t *testing.T) {
	svc, mocks := setupTestNotificationService()
	svc.Notify(context.Background(), "user-1", model.NotificationTypeRequestCreated, "一", "内容", "", "")
	id := mocks.notification.notifications[0].NotificationID

	// 他人的通知不可标记
	if err := svc.MarkRead(context.Background(), "user-2", id); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("标记他人通知应返回 ErrNotificationNotFound, got: %v", err)
	}

	if err := svc.MarkRead(context.Background(), "user-1", id); err != nil {
		t.Errorf("本人标记应成功: %v", err)
	}
	if !mocks.notification.notifications[0].IsRead {
		t.Error("通知应已标记为已读")
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, mocks := setupTestNotificationService()
	svc.Notify(context.Background(), "user-1", model.NotificationTypeRequestCreated, "一", "内容", "", "")
	svc.Notify(context.Background(), "user-1", model.NotificationTypeRequestRejected, "二", "内容", "", "")

	if err := svc.MarkAllRead(context.Background(), "user-1"); err != nil {
		t.Fatalf("MarkAllRead 应成功: %v", err)
	}
	for _, n := range mocks.notification.notifications {
		if !n.IsRead {
			t.Error("全部通知应已读")
		}
	}
}

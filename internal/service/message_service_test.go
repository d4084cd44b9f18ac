package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
)

func setupTestMessageService() (MessageService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewMessageService(repo, zap.NewNop())
	return svc, mocks
}

func TestSend_Success(t *testing.T) {
	svc, mocks := setupTestMessageService()
	recipient := &model.User{Name: "收件人", Email: "r@example.com", Role: model.RoleTutor}
	_ = mocks.user.Create(context.Background(), recipient)

	resp, err := svc.Send(context.Background(), "sender-1", &dto.SendMessageRequest{
		RecipientID: recipient.UserID,
		Body:        "周三的课可以改到周四吗？",
	})
	if err != nil {
		t.Fatalf("Send 应成功，但返回错误: %v", err)
	}
	if resp.IsRead {
		t.Error("新消息应为未读")
	}
}

func TestSend_SelfMessage(t *testing.T) {
	svc, _ := setupTestMessageService()

	_, err := svc.Send(context.Background(), "user-1", &dto.SendMessageRequest{
		RecipientID: "user-1",
		Body:        "自言自语",
	})
	if !errors.Is(err, ErrSelfMessage) {
		t.Errorf("给自己发私信应返回 ErrSelfMessage, got: %v", err)
	}
}

func TestSend_RecipientNotFound(t *testing.T) {
	svc, _ := setupTestMessageService()

	_, err := svc.Send(context.Background(), "sender-1", &dto.SendMessageRequest{
		RecipientID: "ghost",
		Body:        "有人吗",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("收件人不存在应返回 ErrUserNotFound, got: %v", err)
	}
}

func TestConversation_MarksRead(t *testing.T) {
	svc, mocks := setupTestMessageService()
	peer := &model.User{Name: "对方", Email: "p@example.com", Role: model.RoleStudent}
	_ = mocks.user.Create(context.Background(), peer)

	if _, err := svc.Send(context.Background(), peer.UserID, &dto.SendMessageRequest{
		RecipientID: "me",
		Body:        "你好",
	}); err == nil {
		t.Fatal("收件人 me 不存在，Send 应失败")
	}

	me := &model.User{Name: "我", Email: "me@example.com", Role: model.RoleTutor}
	_ = mocks.user.Create(context.Background(), me)
	if _, err := svc.Send(context.Background(), peer.UserID, &dto.SendMessageRequest{
		RecipientID: me.UserID,
		Body:        "你好",
	}); err != nil {
		t.Fatalf("Send 应成功: %v", err)
	}

	unread, _ := svc.UnreadCount(context.Background(), me.UserID)
	if unread != 1 {
		t.Fatalf("未读数不匹配: got %d, want 1", unread)
	}

	conv, err := svc.Conversation(context.Background(), me.UserID, peer.UserID, &dto.ConversationListRequest{})
	if err != nil {
		t.Fatalf("Conversation 应成功，但返回错误: %v", err)
	}
	if conv.Total != 1 {
		t.Errorf("会话消息数不匹配: got %d", conv.Total)
	}

	// 拉取会话后对方消息应已读
	unread, _ = svc.UnreadCount(context.Background(), me.UserID)
	if unread != 0 {
		t.Errorf("拉取会话后未读数应清零: got %d", unread)
	}
}

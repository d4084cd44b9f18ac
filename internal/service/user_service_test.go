package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
)

func setupTestUserService() (UserService, *testRepos) {
	repo, mocks := newTestRepos()
	svc := NewUserService(repo, zap.NewNop())
	return svc, mocks
}

func TestGetMe_Success(t *testing.T) {
	svc, mocks := setupTestUserService()
	user := &model.User{Name: "小明", Email: "ming@example.com", Role: model.RoleStudent, City: "上海"}
	_ = mocks.user.Create(context.Background(), user)

	resp, err := svc.GetMe(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("GetMe 应成功，但返回错误: %v", err)
	}
	if resp.Email != "ming@example.com" || resp.City != "上海" {
		t.Errorf("用户信息不匹配: %+v", resp)
	}
}

func TestGetMe_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	if _, err := svc.GetMe(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("用户不存在应返回 ErrUserNotFound, got: %v", err)
	}
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	svc, mocks := setupTestUserService()
	user := &model.User{Name: "小明", Email: "ming@example.com", Role: model.RoleStudent, City: "上海"}
	_ = mocks.user.Create(context.Background(), user)

	resp, err := svc.UpdateProfile(context.Background(), user.UserID, &dto.UpdateProfileRequest{
		City: strPtr("杭州"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile 应成功，但返回错误: %v", err)
	}
	if resp.Name != "小明" || resp.City != "杭州" {
		t.Errorf("部分更新结果不匹配: %+v", resp)
	}
}

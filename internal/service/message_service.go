package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/model"
	"classconnect/backend/internal/repository"
)

var ErrSelfMessage = errors.New("不能给自己发私信")

// MessageService 私信业务接口
type MessageService interface {
	Send(ctx context.Context, senderID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	Conversation(ctx context.Context, userID, peerID string, req *dto.ConversationListRequest) (*dto.ConversationMessagesResponse, error)
	Conversations(ctx context.Context, userID string) ([]dto.ConversationBrief, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type messageService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMessageService 创建 MessageService 实例
func NewMessageService(repo *repository.Repository, logger *zap.Logger) MessageService {
	return &messageService{repo: repo, logger: logger}
}

func (s *messageService) Send(ctx context.Context, senderID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if req.RecipientID == senderID {
		return nil, ErrSelfMessage
	}

	// 收件人必须存在
	if _, err := s.repo.User.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	msg := &model.Message{
		SenderID:    senderID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}
	if err := s.repo.Message.Create(ctx, msg); err != nil {
		s.logger.Error("发送私信失败", zap.Error(err))
		return nil, err
	}
	return toMessageResponse(msg), nil
}

// Conversation 拉取与 peer 的会话消息，并将对方发来的未读消息标记为已读
func (s *messageService) Conversation(ctx context.Context, userID, peerID string, req *dto.ConversationListRequest) (*dto.ConversationMessagesResponse, error) {
	messages, total, err := s.repo.Message.ListConversation(ctx, userID, peerID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询会话消息失败", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Message.MarkConversationRead(ctx, userID, peerID); err != nil {
		s.logger.Warn("标记会话已读失败", zap.Error(err))
	}

	items := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		items = append(items, *toMessageResponse(&messages[i]))
	}

	return &dto.ConversationMessagesResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Items:    items,
	}, nil
}

func (s *messageService) Conversations(ctx context.Context, userID string) ([]dto.ConversationBrief, error) {
	summaries, err := s.repo.Message.ListConversations(ctx, userID)
	if err != nil {
		s.logger.Error("查询会话列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ConversationBrief, 0, len(summaries))
	for _, sum := range summaries {
		result = append(result, dto.ConversationBrief{
			PeerID:      sum.PeerID,
			PeerName:    sum.PeerName,
			LastMessage: sum.LastMessage,
			LastAt:      sum.LastAt,
			UnreadCount: sum.UnreadCount,
		})
	}
	return result, nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.Message.CountUnread(ctx, userID)
}

func toMessageResponse(msg *model.Message) *dto.MessageResponse {
	return &dto.MessageResponse{
		ID:          msg.MessageID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Body:        msg.Body,
		IsRead:      msg.IsRead,
		CreatedAt:   msg.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"classconnect/backend/internal/dto"
	"classconnect/backend/internal/service"
	"classconnect/backend/pkg/response"
)

// MessageHandler 私信模块 HTTP 处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送私信
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	senderID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.messageSvc.Send(c.Request.Context(), senderID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfMessage):
			response.BadRequest(c, 19001, "不能给自己发私信")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12001, "收件人不存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// Conversation 拉取与指定用户的会话消息（自动标记已读）
// GET /api/v1/messages/conversations/:peer_id
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ConversationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.messageSvc.Conversation(c.Request.Context(), userID, c.Param("peer_id"), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Conversations 会话列表
// GET /api/v1/messages/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.messageSvc.Conversations(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UnreadCount 未读私信总数
// GET /api/v1/messages/unread_count
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	count, err := h.messageSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"unread_count": count})
}

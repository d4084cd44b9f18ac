package dto

// ── 私信模块 DTO ──

// SendMessageRequest 发送私信请求
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required,uuid"`
	Body        string `json:"body"         binding:"required,min=1,max=5000"`
}

// ConversationListRequest 会话消息列表查询参数
type ConversationListRequest struct {
	PaginationRequest
}

// ConversationMessagesResponse 会话消息列表响应
type ConversationMessagesResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Items    []MessageResponse `json:"items"`
}

// MessageResponse 私信响应
type MessageResponse struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
	IsRead      bool   `json:"is_read"`
	CreatedAt   string `json:"created_at"`
}

// ConversationBrief 会话摘要（对话列表）
type ConversationBrief struct {
	PeerID      string `json:"peer_id"`
	PeerName    string `json:"peer_name"`
	LastMessage string `json:"last_message"`
	LastAt      string `json:"last_at"`
	UnreadCount int64  `json:"unread_count"`
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"classconnect/backend/internal/model"
)

// ConversationSummary 会话摘要行（原生 SQL 查询结果）
type ConversationSummary struct {
	PeerID      string
	PeerName    string
	LastMessage string
	LastAt      string
	UnreadCount int64
}

// MessageRepository 私信数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListConversation(ctx context.Context, userID, peerID string, offset, limit int) ([]model.Message, int64, error)
	ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error)
	MarkConversationRead(ctx context.Context, userID, peerID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepo 创建 MessageRepository 实例
func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepo) ListConversation(ctx context.Context, userID, peerID string, offset, limit int) ([]model.Message, int64, error) {
	var msgs []model.Message
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, peerID, peerID, userID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	return msgs, total, err
}

// ListConversations 列出用户的全部会话摘要（按最近一条消息倒序）
func (r *messageRepo) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	var rows []ConversationSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (peer_id)
		       peer_id,
		       u.name AS peer_name,
		       m.body AS last_message,
		       to_char(m.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS last_at,
		       (SELECT COUNT(*) FROM messages
		         WHERE recipient_id = @uid AND sender_id = peer_id AND is_read = FALSE) AS unread_count
		FROM (
		    SELECT *,
		           CASE WHEN sender_id = @uid THEN recipient_id ELSE sender_id END AS peer_id
		    FROM messages
		    WHERE sender_id = @uid OR recipient_id = @uid
		) m
		JOIN users u ON u.user_id = m.peer_id
		ORDER BY peer_id, m.created_at DESC`,
		map[string]interface{}{"uid": userID}).
		Scan(&rows).Error
	return rows, err
}

func (r *messageRepo) MarkConversationRead(ctx context.Context, userID, peerID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", userID, peerID, false).
		Update("is_read", true).Error
}

func (r *messageRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

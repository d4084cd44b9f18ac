package model

import "time"

// Message 私信表 — 对应 messages
type Message struct {
	MessageID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	SenderID    string    `gorm:"type:uuid;not null"                             json:"sender_id"`
	RecipientID string    `gorm:"type:uuid;not null"                             json:"recipient_id"`
	Body        string    `gorm:"type:text;not null"                             json:"body"`
	IsRead      bool      `gorm:"not null;default:false"                         json:"is_read"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Sender    *User `gorm:"foreignKey:SenderID;references:UserID"    json:"sender,omitempty"`
	Recipient *User `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
}

// TableName 指定表名
func (Message) TableName() string { return "messages" }

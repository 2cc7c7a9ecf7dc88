package model

import "time"

type SenderRole string

const (
	SenderUser   SenderRole = "user"
	SenderVendor SenderRole = "vendor"
)

// Message rows are append-only and ordered by created_at, not by arrival
// order at the relay.
type Message struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string     `gorm:"column:conversation_id;size:36;index;not null" json:"conversationId"`
	Sender         SenderRole `gorm:"size:16;not null" json:"sender"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

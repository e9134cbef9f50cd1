package models

import (
	"time"

	"gorm.io/gorm"
)

// Sender tags used on Message rows.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Conversation groups the messages of one completion exchange.
type Conversation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Messages  []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one turn of a conversation.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"-" gorm:"index;not null"`
	Sender         string    `json:"sender" gorm:"size:16;not null"`
	Text           string    `json:"text" gorm:"type:text;not null"`
	Timestamp      time.Time `json:"timestamp"`
}

// BeforeCreate stamps the server side timestamp.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return nil
}

// ConversationSummary is the row shape of GET /conversations.
type ConversationSummary struct {
	ID           uint  `json:"id"`
	UserID       uint  `json:"user_id"`
	MessageCount int64 `json:"message_count"`
}

// ConversationDetail is the response of GET /conversation/:id.
type ConversationDetail struct {
	ID       uint      `json:"id"`
	UserID   uint      `json:"user_id"`
	Messages []Message `json:"messages"`
}

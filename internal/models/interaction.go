// internal/models/interaction.go
package models

import (
	"time"
)

// Event is an append-only record that a tea was shown to a visitor.
type Event struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AnonUserID string    `json:"anon_user_id" gorm:"size:64;not null;index"`
	TeaID      uint      `json:"tea_id" gorm:"not null;index"`
	Type       string    `json:"type" gorm:"size:50;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (Event) TableName() string {
	return "event"
}

// Feedback is a like or dislike. At most one row per (anon_user_id, tea_id)
// per UTC day is written by the interaction service.
type Feedback struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	AnonUserID string         `json:"anon_user_id" gorm:"size:64;not null;index:idx_feedback_user_tea_created,priority:1"`
	TeaID      uint           `json:"tea_id" gorm:"not null;index:idx_feedback_user_tea_created,priority:2"`
	Action     FeedbackAction `json:"action" gorm:"type:varchar(20);not null"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index;index:idx_feedback_user_tea_created,priority:3"`
}

func (Feedback) TableName() string {
	return "feedback"
}

type MessageFeedback struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	AnonUserID string    `json:"anon_user_id" gorm:"size:64;not null;index"`
	TeaID      *uint     `json:"tea_id"`
	Message    string    `json:"message" gorm:"type:text;not null"`
	Contact    *string   `json:"contact" gorm:"size:120"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MessageFeedback) TableName() string {
	return "message_feedback"
}

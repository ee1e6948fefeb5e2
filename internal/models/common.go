// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type TeaStatus string

const (
	TeaStatusOnline  TeaStatus = "online"
	TeaStatusOffline TeaStatus = "offline"
)

func (s TeaStatus) Valid() bool {
	return s == TeaStatusOnline || s == TeaStatusOffline
}

type FeedbackAction string

const (
	FeedbackActionLike    FeedbackAction = "like"
	FeedbackActionDislike FeedbackAction = "dislike"
)

func (a FeedbackAction) Valid() bool {
	return a == FeedbackActionLike || a == FeedbackActionDislike
}

// EventTypeImpression is the only event type counted as a page view.
// Clients also send detail_open, which is stored but not aggregated.
const (
	EventTypeImpression = "impression"
	EventTypeDetailOpen = "detail_open"
)

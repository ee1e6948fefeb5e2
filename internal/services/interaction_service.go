// internal/services/interaction_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/metrics"
	"github.com/laihecha/tea-api/internal/models"
	"github.com/laihecha/tea-api/internal/reco"
	"github.com/laihecha/tea-api/internal/utils"
)

var ErrInvalidAction = errors.New("invalid action")

type InteractionService struct {
	db    *gorm.DB
	clock Clock
}

type EventRequest struct {
	AnonUserID string `json:"anon_user_id" binding:"required" validate:"anon_id"`
	TeaID      uint   `json:"tea_id" binding:"required" validate:"required"`
	Type       string `json:"type" binding:"required" validate:"required,max=50"`
}

type FeedbackRequest struct {
	AnonUserID string                `json:"anon_user_id" binding:"required" validate:"anon_id"`
	TeaID      uint                  `json:"tea_id" binding:"required" validate:"required"`
	Action     models.FeedbackAction `json:"action" binding:"required"`
}

type MessageRequest struct {
	AnonUserID string  `json:"anon_user_id" binding:"required" validate:"anon_id"`
	Message    string  `json:"message" binding:"required" validate:"required"`
	Contact    *string `json:"contact" validate:"omitempty,max=120"`
	TeaID      *uint   `json:"tea_id"`
}

type FeedbackResult struct {
	Applied bool `json:"applied"`
}

func NewInteractionService(db *gorm.DB, clock Clock) *InteractionService {
	if clock == nil {
		clock = SystemClock
	}
	return &InteractionService{db: db, clock: clock}
}

func (s *InteractionService) RecordEvent(ctx context.Context, req *EventRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	event := &models.Event{
		AnonUserID: req.AnonUserID,
		TeaID:      req.TeaID,
		Type:       req.Type,
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	metrics.RecordEvent(req.Type)
	return nil
}

// SubmitFeedback stores at most one like/dislike per visitor, tea and UTC
// day. A repeat inside the same day is a successful no-op (Applied=false).
//
// The existence check and the insert are separate statements with no lock
// between them. Two truly concurrent submissions for the same key can both
// pass the check; that window is accepted and the invariant only holds for
// sequential requests.
func (s *InteractionService) SubmitFeedback(ctx context.Context, req *FeedbackRequest) (*FeedbackResult, error) {
	if !req.Action.Valid() {
		return nil, fmt.Errorf("%w: %w %q", ErrBadRequest, ErrInvalidAction, req.Action)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	now := s.clock().UTC()
	today := reco.DayWindow(now)

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("anon_user_id = ? AND tea_id = ?", req.AnonUserID, req.TeaID).
		Where("created_at >= ? AND created_at < ?", today.From, today.To).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to check feedback: %w", err)
	}

	if existing > 0 {
		metrics.RecordFeedback(string(req.Action), false)
		logrus.WithFields(logrus.Fields{
			"anon_user_id": req.AnonUserID,
			"tea_id":       req.TeaID,
		}).Debug("Duplicate feedback ignored")
		return &FeedbackResult{Applied: false}, nil
	}

	feedback := &models.Feedback{
		AnonUserID: req.AnonUserID,
		TeaID:      req.TeaID,
		Action:     req.Action,
		CreatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to record feedback: %w", err)
	}

	metrics.RecordFeedback(string(req.Action), true)
	return &FeedbackResult{Applied: true}, nil
}

func (s *InteractionService) SubmitMessage(ctx context.Context, req *MessageRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	msg := &models.MessageFeedback{
		AnonUserID: req.AnonUserID,
		TeaID:      req.TeaID,
		Message:    req.Message,
		Contact:    req.Contact,
		CreatedAt:  s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to record message: %w", err)
	}
	return nil
}

// FeedbackTeaIDs lists the distinct teas a visitor rated inside window.
func (s *InteractionService) FeedbackTeaIDs(ctx context.Context, anonUserID string, window reco.Window) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Feedback{}).
		Where("anon_user_id = ?", anonUserID).
		Where("created_at >= ? AND created_at < ?", window.From, window.To).
		Distinct().Pluck("tea_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load feedback ids: %w", err)
	}
	return ids, nil
}

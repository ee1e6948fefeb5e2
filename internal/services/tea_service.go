// internal/services/tea_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/database"
	"github.com/laihecha/tea-api/internal/models"
	"github.com/laihecha/tea-api/internal/reco"
	"github.com/laihecha/tea-api/internal/utils"
)

// FeedbackLookup yields the teas a visitor already rated inside a window.
// The interaction service implements it.
type FeedbackLookup interface {
	FeedbackTeaIDs(ctx context.Context, anonUserID string, window reco.Window) ([]uint, error)
}

type TeaService struct {
	db        *gorm.DB
	feedbacks FeedbackLookup
	clock     Clock
}

type AdminTeaFilter struct {
	utils.PaginationParams
	Keyword  string
	Status   string
	Category string
}

func NewTeaService(db *gorm.DB, feedbacks FeedbackLookup, clock Clock) *TeaService {
	if clock == nil {
		clock = SystemClock
	}
	return &TeaService{
		db:        db,
		feedbacks: feedbacks,
		clock:     clock,
	}
}

// ListPublic runs the public selection rules and returns one page of teas
// plus the unpaged total.
func (s *TeaService) ListPublic(ctx context.Context, q reco.SelectionQuery) ([]models.Tea, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	var fedToday []uint
	if q.NeedsFeedbackExclusion() && s.feedbacks != nil {
		ids, err := s.feedbacks.FeedbackTeaIDs(ctx, q.AnonUserID, reco.DayWindow(s.clock()))
		if err != nil {
			return nil, 0, err
		}
		fedToday = ids
	}

	plan, err := reco.Plan(q, fedToday)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	query := s.planQuery(ctx, plan)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count teas: %w", err)
	}

	var teas []models.Tea
	if err := query.Order("weight DESC").Order("created_at DESC").Order("id DESC").
		Offset(plan.Offset).Limit(plan.Limit).
		Find(&teas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch teas: %w", err)
	}

	return teas, total, nil
}

func (s *TeaService) planQuery(ctx context.Context, plan reco.SelectionPlan) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Tea{}).Where("status = ?", models.TeaStatusOnline)
	if plan.Category != "" {
		query = query.Where("category = ?", plan.Category)
	}
	if plan.OnlyIDs != nil {
		query = query.Where("id IN ?", plan.OnlyIDs)
	}
	if len(plan.Exclude) > 0 {
		query = query.Where("id NOT IN ?", plan.Exclude)
	}
	return query
}

// GetPublic hides offline teas behind ErrNotFound.
func (s *TeaService) GetPublic(ctx context.Context, id uint) (*models.Tea, error) {
	tea, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tea.Status != models.TeaStatusOnline {
		return nil, fmt.Errorf("tea %d is offline: %w", id, ErrNotFound)
	}
	return tea, nil
}

func (s *TeaService) Get(ctx context.Context, id uint) (*models.Tea, error) {
	var tea models.Tea
	if err := s.db.WithContext(ctx).First(&tea, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tea %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &tea, nil
}

func (s *TeaService) AdminList(ctx context.Context, filter AdminTeaFilter) ([]models.Tea, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Tea{})

	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+strings.TrimSpace(filter.Keyword)+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count teas: %w", err)
	}

	var teas []models.Tea
	query = query.Order("updated_at DESC").Order("id DESC")
	if err := utils.ApplyPagination(query, filter.PaginationParams).Find(&teas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch teas: %w", err)
	}

	return teas, total, nil
}

func (s *TeaService) Create(ctx context.Context, base models.TeaBase) (*models.Tea, error) {
	base.Normalize()
	if err := utils.ValidateStruct(&base); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	now := s.clock().UTC()
	tea := &models.Tea{}
	base.Apply(tea)
	tea.CreatedAt = now
	tea.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(tea).Error; err != nil {
		return nil, fmt.Errorf("failed to create tea: %w", err)
	}
	return tea, nil
}

func (s *TeaService) Update(ctx context.Context, id uint, base models.TeaBase) (*models.Tea, error) {
	base.Normalize()
	if err := utils.ValidateStruct(&base); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	tea, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	base.Apply(tea)
	tea.UpdatedAt = s.clock().UTC()

	if err := s.db.WithContext(ctx).Save(tea).Error; err != nil {
		return nil, fmt.Errorf("failed to update tea: %w", err)
	}
	return tea, nil
}

// DeletedTea is a removed tea and whether another tea still shows its cover.
type DeletedTea struct {
	Tea         models.Tea
	CoverShared bool
}

func (s *TeaService) Delete(ctx context.Context, id uint) (*DeletedTea, error) {
	deleted := &DeletedTea{}
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.First(&deleted.Tea, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("tea %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("database error: %w", err)
		}
		if err := tx.Delete(&models.Tea{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete tea: %w", err)
		}

		var others int64
		if err := tx.Model(&models.Tea{}).Where("cover_url = ?", deleted.Tea.CoverURL).Count(&others).Error; err != nil {
			return fmt.Errorf("failed to count cover references: %w", err)
		}
		deleted.CoverShared = others > 0
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// BulkCreate inserts every item with one shared timestamp. Items are assumed
// to be validated by the import preview; they are re-validated here anyway
// since the commit payload comes back from the client.
func (s *TeaService) BulkCreate(ctx context.Context, items []models.TeaBase) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	now := s.clock().UTC()
	teas := make([]models.Tea, 0, len(items))
	for i, item := range items {
		item.Normalize()
		if err := utils.ValidateStruct(&item); err != nil {
			return 0, fmt.Errorf("%w: item %d: %v", ErrBadRequest, i, err)
		}
		tea := models.Tea{}
		item.Apply(&tea)
		tea.CreatedAt = now
		tea.UpdatedAt = now
		teas = append(teas, tea)
	}

	if err := s.db.WithContext(ctx).CreateInBatches(&teas, 100).Error; err != nil {
		return 0, fmt.Errorf("failed to insert teas: %w", err)
	}
	return len(teas), nil
}

// Online returns every online tea, newest first. The dashboard ranks them.
func (s *TeaService) Online(ctx context.Context) ([]models.Tea, error) {
	var teas []models.Tea
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.TeaStatusOnline).
		Order("created_at DESC").Order("id DESC").
		Find(&teas).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch online teas: %w", err)
	}
	return teas, nil
}

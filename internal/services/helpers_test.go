package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/database"
	"github.com/laihecha/tea-api/internal/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedTea(t *testing.T, db *gorm.DB, name, category string, createdAt time.Time, mutate ...func(*models.Tea)) models.Tea {
	t.Helper()
	tea := models.Tea{
		Name:     name,
		Category: category,
		Year:     2020,
		Origin:   "武夷山",
		Spec:     "100g",
		CoverURL: "/uploads/" + name + ".jpg",
		Status:   models.TeaStatusOnline,
	}
	tea.CreatedAt = createdAt
	tea.UpdatedAt = createdAt
	for _, m := range mutate {
		m(&tea)
	}
	require.NoError(t, db.Create(&tea).Error)
	return tea
}

func seedEvent(t *testing.T, db *gorm.DB, teaID uint, eventType string, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Event{
		AnonUserID: "visitor",
		TeaID:      teaID,
		Type:       eventType,
		CreatedAt:  at,
	}).Error)
}

func seedFeedback(t *testing.T, db *gorm.DB, anon string, teaID uint, action models.FeedbackAction, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.Feedback{
		AnonUserID: anon,
		TeaID:      teaID,
		Action:     action,
		CreatedAt:  at,
	}).Error)
}

func ids(teas []models.Tea) []uint {
	out := make([]uint, 0, len(teas))
	for _, t := range teas {
		out = append(out, t.ID)
	}
	return out
}

var bg = context.Background()

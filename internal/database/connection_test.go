package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/config"
	"github.com/laihecha/tea-api/internal/models"
)

func TestRunMigrationsCreatesTables(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	for _, table := range []string{"tea", "event", "feedback", "message_feedback"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestWithTransactionRollsBack(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		tea := models.Tea{Name: "x", Category: "white", Year: 2020, Origin: "o", Spec: "s", CoverURL: "u", Status: models.TeaStatusOnline}
		if err := tx.Create(&tea).Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Tea{}).Count(&count).Error)
	assert.Zero(t, count)

	err = WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		tea := models.Tea{Name: "y", Category: "white", Year: 2020, Origin: "o", Spec: "s", CoverURL: "u", Status: models.TeaStatusOnline}
		return tx.Create(&tea).Error
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Tea{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpenDialectorRejectsUnknownDriver(t *testing.T) {
	_, err := openDialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

// Package seed loads the bundled demo catalog into an empty store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/laihecha/tea-api/internal/models"
	"github.com/laihecha/tea-api/internal/services"
)

//go:embed catalog.json
var catalogJSON []byte

func DemoCatalog() ([]models.TeaBase, error) {
	var items []models.TeaBase
	if err := json.Unmarshal(catalogJSON, &items); err != nil {
		return nil, fmt.Errorf("failed to decode demo catalog: %w", err)
	}
	return items, nil
}

// Run inserts the demo catalog unless the tea table already has rows. It
// returns the number of inserted teas.
func Run(ctx context.Context, db *gorm.DB, clock services.Clock) (int, error) {
	var existing int64
	if err := db.WithContext(ctx).Model(&models.Tea{}).Count(&existing).Error; err != nil {
		return 0, fmt.Errorf("failed to count teas: %w", err)
	}
	if existing > 0 {
		logrus.WithField("existing", existing).Info("Catalog is not empty, skipping seed")
		return 0, nil
	}

	items, err := DemoCatalog()
	if err != nil {
		return 0, err
	}

	inserted, err := services.NewTeaService(db, nil, clock).BulkCreate(ctx, items)
	if err != nil {
		return 0, err
	}
	logrus.WithField("inserted", inserted).Info("Seeded demo catalog")
	return inserted, nil
}

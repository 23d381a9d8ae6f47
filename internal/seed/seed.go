package seed

import (
	"context"
	"errors"

	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	"gorm.io/gorm"
)

// EnsureRefreshMetadata inserts the singleton refresh_metadata row if it
// does not exist yet. The fixed id keeps the row unique; the refresh
// orchestrator only ever updates it.
func EnsureRefreshMetadata(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing countrydomain.RefreshMetadata
		err := tx.Where("id = ?", countrydomain.MetadataRowID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&countrydomain.RefreshMetadata{
			ID:             countrydomain.MetadataRowID,
			TotalCountries: 0,
		}).Error
	})
}

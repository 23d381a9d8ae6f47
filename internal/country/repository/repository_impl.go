package repository

import (
	"context"
	"errors"
	"time"

	"github.com/countrypulse/countrypulse/internal/country/domain"
	pkgdb "github.com/countrypulse/countrypulse/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// UpsertByName updates the row matching the name case-insensitively, or
// inserts a new one. On update the caller's record adopts the existing
// row id so the same logical entity is never duplicated.
func (r *repo) UpsertByName(ctx context.Context, db *gorm.DB, country *domain.Country) error {
	var existing domain.Country
	err := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", country.Name).
		First(&existing).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		createErr := db.WithContext(ctx).Create(country).Error
		if createErr == nil {
			return nil
		}
		if !pkgdb.IsDuplicateKeyErr(createErr) {
			return createErr
		}
		// A concurrent refresh inserted the same name between the
		// lookup and the create; re-read and update that row instead.
		if err := db.WithContext(ctx).
			Where("LOWER(name) = LOWER(?)", country.Name).
			First(&existing).Error; err != nil {
			return err
		}
	default:
		return err
	}

	country.ID = existing.ID
	return db.WithContext(ctx).
		Model(&domain.Country{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"capital":           country.Capital,
			"region":            country.Region,
			"population":        country.Population,
			"currency_code":     country.CurrencyCode,
			"exchange_rate":     country.ExchangeRate,
			"estimated_gdp":     country.EstimatedGDP,
			"flag_url":          country.FlagURL,
			"last_refreshed_at": country.LastRefreshedAt,
		}).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Country, error) {
	stmt := db.WithContext(ctx).Model(&domain.Country{})
	if filter.Region != "" {
		stmt = stmt.Where("LOWER(region) = LOWER(?)", filter.Region)
	}
	if filter.Currency != "" {
		stmt = stmt.Where("LOWER(currency_code) = LOWER(?)", filter.Currency)
	}
	switch filter.Sort {
	case domain.SortGDPDesc:
		stmt = stmt.Order("estimated_gdp DESC")
	case domain.SortGDPAsc:
		stmt = stmt.Order("estimated_gdp ASC")
	case domain.SortNameAsc:
		stmt = stmt.Order("name ASC")
	case domain.SortNameDesc:
		stmt = stmt.Order("name DESC")
	}

	var countries []domain.Country
	if err := stmt.Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *repo) GetByName(ctx context.Context, db *gorm.DB, name string) (*domain.Country, error) {
	var country domain.Country
	err := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}

func (r *repo) DeleteByName(ctx context.Context, db *gorm.DB, name string) (bool, error) {
	res := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		Delete(&domain.Country{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Country{}).Count(&count).Error
	return count, err
}

func (r *repo) TopByGDP(ctx context.Context, db *gorm.DB, limit int) ([]domain.Country, error) {
	var countries []domain.Country
	err := db.WithContext(ctx).
		Model(&domain.Country{}).
		Where("estimated_gdp IS NOT NULL").
		Order("estimated_gdp DESC").
		Limit(limit).
		Find(&countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *repo) GetMetadata(ctx context.Context, db *gorm.DB) (*domain.RefreshMetadata, error) {
	var metadata domain.RefreshMetadata
	err := db.WithContext(ctx).
		Where("id = ?", domain.MetadataRowID).
		First(&metadata).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &metadata, nil
}

func (r *repo) SetMetadata(ctx context.Context, db *gorm.DB, totalCountries int64, refreshedAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.RefreshMetadata{}).
		Where("id = ?", domain.MetadataRowID).
		Updates(map[string]interface{}{
			"total_countries":   totalCountries,
			"last_refreshed_at": refreshedAt,
		}).Error
}

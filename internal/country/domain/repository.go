package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository persists countries and the refresh metadata singleton.
// Name matching is case-insensitive for lookup, upsert, and delete.
type Repository interface {
	UpsertByName(ctx context.Context, db *gorm.DB, country *Country) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Country, error)
	GetByName(ctx context.Context, db *gorm.DB, name string) (*Country, error)
	DeleteByName(ctx context.Context, db *gorm.DB, name string) (bool, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	TopByGDP(ctx context.Context, db *gorm.DB, limit int) ([]Country, error)
	GetMetadata(ctx context.Context, db *gorm.DB) (*RefreshMetadata, error)
	SetMetadata(ctx context.Context, db *gorm.DB, totalCountries int64, refreshedAt time.Time) error
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Country is the persisted merge of upstream country metadata and the
// USD exchange rate snapshot it was last refreshed against.
//
// EstimatedGDP is non-null only when ExchangeRate was non-null and
// positive at computation time; both stay null for countries whose
// currency code had no rate.
type Country struct {
	ID              snowflake.ID        `gorm:"primaryKey" json:"id"`
	Name            string              `gorm:"not null" json:"name"`
	Capital         *string             `json:"capital,omitempty"`
	Region          *string             `json:"region,omitempty"`
	Population      int64               `gorm:"not null" json:"population"`
	CurrencyCode    *string             `gorm:"size:10" json:"currency_code"`
	ExchangeRate    decimal.NullDecimal `gorm:"type:numeric" json:"exchange_rate"`
	EstimatedGDP    decimal.NullDecimal `gorm:"type:numeric;column:estimated_gdp" json:"estimated_gdp"`
	FlagURL         *string             `json:"flag_url,omitempty"`
	LastRefreshedAt time.Time           `gorm:"not null" json:"last_refreshed_at"`
}

func (Country) TableName() string { return "countries" }

// RefreshMetadata is the singleton aggregate row (fixed id) tracking the
// last successful refresh. It is written only inside the refresh
// transaction, always with the post-upsert total.
type RefreshMetadata struct {
	ID              int64     `gorm:"primaryKey" json:"-"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
	TotalCountries  int64     `json:"total_countries"`
}

func (RefreshMetadata) TableName() string { return "refresh_metadata" }

// MetadataRowID is the fixed id of the singleton refresh_metadata row.
const MetadataRowID int64 = 1

// Sort keys accepted by the list endpoint.
const (
	SortGDPAsc   = "gdp_asc"
	SortGDPDesc  = "gdp_desc"
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
)

// ListFilter narrows the list query; empty fields match everything.
type ListFilter struct {
	Region   string
	Currency string
	Sort     string
}

type ListRequest struct {
	Region   string
	Currency string
	Sort     string
}

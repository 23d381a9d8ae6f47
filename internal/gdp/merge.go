package gdp

import (
	"strings"

	upstreamdomain "github.com/countrypulse/countrypulse/internal/upstream/domain"
	"github.com/shopspring/decimal"
)

// Enriched is one country joined with its exchange rate and estimate,
// ready for persistence.
type Enriched struct {
	Name         string
	Capital      *string
	Region       *string
	Population   int64
	CurrencyCode *string
	ExchangeRate decimal.NullDecimal
	EstimatedGDP decimal.NullDecimal
	FlagURL      *string
}

// Merge left-joins countries with rates by first currency code. Output
// preserves input order and cardinality: exactly one enriched record per
// input country, with null rate and estimate where no match exists.
func Merge(countries []upstreamdomain.FetchedCountry, rates upstreamdomain.RateTable, estimator *Estimator) []Enriched {
	enriched := make([]Enriched, 0, len(countries))
	for _, country := range countries {
		record := Enriched{
			Name:       country.Name,
			Capital:    optional(country.Capital),
			Region:     optional(country.Region),
			Population: country.Population,
			FlagURL:    optional(country.Flag),
		}

		if len(country.Currencies) > 0 {
			if code := strings.TrimSpace(country.Currencies[0].Code); code != "" {
				record.CurrencyCode = &code
				if rate, ok := rates[code]; ok {
					record.ExchangeRate = decimal.NullDecimal{Decimal: rate, Valid: true}
				}
			}
		}

		record.EstimatedGDP = estimator.Estimate(country.Population, record.ExchangeRate)
		enriched = append(enriched, record)
	}
	return enriched
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

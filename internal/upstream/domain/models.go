package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Source identifies one of the two upstream data providers.
type Source string

const (
	SourceCountries Source = "RestCountries"
	SourceRates     Source = "Exchange Rate"
)

// CurrencyEntry is one element of a country's currencies array; only the
// first entry's code is authoritative.
type CurrencyEntry struct {
	Code string `json:"code"`
}

// FetchedCountry is the raw upstream country shape, transient per refresh.
type FetchedCountry struct {
	Name       string          `json:"name"`
	Capital    string          `json:"capital"`
	Region     string          `json:"region"`
	Population int64           `json:"population"`
	Flag       string          `json:"flag"`
	Currencies []CurrencyEntry `json:"currencies"`
}

// RateTable maps currency codes to USD exchange rates. It is replaced
// wholesale on every fetch, never merged.
type RateTable map[string]decimal.Decimal

// CountriesClient fetches the country directory.
type CountriesClient interface {
	Fetch(ctx context.Context) ([]FetchedCountry, error)
}

// RatesClient fetches the exchange rate table.
type RatesClient interface {
	Fetch(ctx context.Context) (RateTable, error)
}

// UnavailableError normalizes every transport, status, and timeout
// failure of one upstream into a single caller-visible condition.
type UnavailableError struct {
	Source Source
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("Could not fetch data from %s API", e.Source)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// AsUnavailable reports whether err wraps an upstream failure.
func AsUnavailable(err error) (*UnavailableError, bool) {
	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return unavailable, true
	}
	return nil, false
}

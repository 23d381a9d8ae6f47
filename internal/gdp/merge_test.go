package gdp

import (
	"testing"

	upstreamdomain "github.com/countrypulse/countrypulse/internal/upstream/domain"
	"github.com/shopspring/decimal"
)

func fixedEstimator() *Estimator {
	return NewEstimator(func() float64 { return 0.5 })
}

func TestMergePreservesOrderAndCardinality(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{Name: "Aland", Population: 10},
		{Name: "Burundi", Population: 20},
		{Name: "Chile", Population: 30},
	}

	enriched := Merge(countries, upstreamdomain.RateTable{}, fixedEstimator())
	if len(enriched) != len(countries) {
		t.Fatalf("expected %d records, got %d", len(countries), len(enriched))
	}
	for i, record := range enriched {
		if record.Name != countries[i].Name {
			t.Fatalf("order not preserved at %d: got %s", i, record.Name)
		}
	}
}

func TestMergeUnmatchedCurrency(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{
			Name:       "Testland",
			Population: 1_000_000,
			Currencies: []upstreamdomain.CurrencyEntry{{Code: "XYZ"}},
		},
	}

	enriched := Merge(countries, upstreamdomain.RateTable{}, fixedEstimator())

	record := enriched[0]
	if record.CurrencyCode == nil || *record.CurrencyCode != "XYZ" {
		t.Fatalf("expected currency code XYZ, got %v", record.CurrencyCode)
	}
	if record.ExchangeRate.Valid {
		t.Fatal("expected null exchange rate for unmatched code")
	}
	if record.EstimatedGDP.Valid {
		t.Fatal("expected null estimate for unmatched code")
	}
}

func TestMergeMatchedCurrency(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{
			Name:       "Testland",
			Population: 1_000_000,
			Currencies: []upstreamdomain.CurrencyEntry{{Code: "USD"}},
		},
	}
	rates := upstreamdomain.RateTable{"USD": decimal.NewFromInt(2)}

	enriched := Merge(countries, rates, fixedEstimator())

	record := enriched[0]
	if !record.ExchangeRate.Valid || !record.ExchangeRate.Decimal.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected exchange rate 2, got %v", record.ExchangeRate)
	}
	want := decimal.NewFromInt(750_000_000)
	if !record.EstimatedGDP.Valid || !record.EstimatedGDP.Decimal.Equal(want) {
		t.Fatalf("expected estimate %s, got %v", want.String(), record.EstimatedGDP)
	}
}

func TestMergeNoCurrencies(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{Name: "Nowhere", Population: 42},
	}
	rates := upstreamdomain.RateTable{"USD": decimal.NewFromInt(2)}

	record := Merge(countries, rates, fixedEstimator())[0]
	if record.CurrencyCode != nil {
		t.Fatalf("expected nil currency code, got %q", *record.CurrencyCode)
	}
	if record.ExchangeRate.Valid || record.EstimatedGDP.Valid {
		t.Fatal("expected null rate and estimate without a currency")
	}
}

func TestMergeFirstCurrencyWins(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{
			Name:       "Dualia",
			Population: 100,
			Currencies: []upstreamdomain.CurrencyEntry{{Code: "AAA"}, {Code: "BBB"}},
		},
	}
	rates := upstreamdomain.RateTable{"BBB": decimal.NewFromInt(5)}

	record := Merge(countries, rates, fixedEstimator())[0]
	if record.CurrencyCode == nil || *record.CurrencyCode != "AAA" {
		t.Fatalf("expected first code AAA, got %v", record.CurrencyCode)
	}
	if record.ExchangeRate.Valid {
		t.Fatal("first code is authoritative; second entry must not match")
	}
}

func TestMergeTrimsCurrencyCodeBeforeLookup(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{
			Name:       "Paddington",
			Population: 1_000_000,
			Currencies: []upstreamdomain.CurrencyEntry{{Code: " USD "}},
		},
	}
	rates := upstreamdomain.RateTable{"USD": decimal.NewFromInt(2)}

	record := Merge(countries, rates, fixedEstimator())[0]
	if record.CurrencyCode == nil || *record.CurrencyCode != "USD" {
		t.Fatalf("expected trimmed code USD, got %v", record.CurrencyCode)
	}
	if !record.ExchangeRate.Valid || !record.ExchangeRate.Decimal.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("trimmed code must still match the rate table, got %v", record.ExchangeRate)
	}
	if !record.EstimatedGDP.Valid {
		t.Fatal("expected estimate for a matched trimmed code")
	}
}

func TestMergeBlankCurrencyCode(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{
			Name:       "Hollowland",
			Population: 50,
			Currencies: []upstreamdomain.CurrencyEntry{{Code: "  "}},
		},
	}

	record := Merge(countries, upstreamdomain.RateTable{}, fixedEstimator())[0]
	if record.CurrencyCode != nil {
		t.Fatalf("expected nil code for whitespace entry, got %q", *record.CurrencyCode)
	}
	if record.ExchangeRate.Valid || record.EstimatedGDP.Valid {
		t.Fatal("expected null rate and estimate for whitespace code")
	}
}

func TestMergeBlankOptionalFields(t *testing.T) {
	countries := []upstreamdomain.FetchedCountry{
		{Name: "Sparse", Capital: " ", Region: "", Population: 7, Flag: ""},
	}

	record := Merge(countries, upstreamdomain.RateTable{}, fixedEstimator())[0]
	if record.Capital != nil || record.Region != nil || record.FlagURL != nil {
		t.Fatal("blank optional fields should map to nil")
	}
}

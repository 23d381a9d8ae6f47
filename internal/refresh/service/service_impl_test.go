package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/countrypulse/countrypulse/internal/clock"
	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	"github.com/countrypulse/countrypulse/internal/country/repository"
	"github.com/countrypulse/countrypulse/internal/summary"
	upstreamdomain "github.com/countrypulse/countrypulse/internal/upstream/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubCountries struct {
	countries []upstreamdomain.FetchedCountry
	err       error
}

func (s *stubCountries) Fetch(ctx context.Context) ([]upstreamdomain.FetchedCountry, error) {
	return s.countries, s.err
}

type stubRates struct {
	rates upstreamdomain.RateTable
	err   error
}

func (s *stubRates) Fetch(ctx context.Context) (upstreamdomain.RateTable, error) {
	return s.rates, s.err
}

type stubGenerator struct {
	generated []summary.Data
	err       error
}

func (s *stubGenerator) Generate(data summary.Data) error {
	if s.err != nil {
		return s.err
	}
	s.generated = append(s.generated, data)
	return nil
}

func (s *stubGenerator) ArtifactPath() string { return "cache/summary.png" }

type fixture struct {
	svc       *Service
	db        *gorm.DB
	countries *stubCountries
	rates     *stubRates
	generator *stubGenerator
	clock     *clock.FakeClock
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&countrydomain.Country{}, &countrydomain.RefreshMetadata{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&countrydomain.RefreshMetadata{ID: countrydomain.MetadataRowID}).Error; err != nil {
		t.Fatalf("seed metadata: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	countries := &stubCountries{}
	rates := &stubRates{}
	generator := &stubGenerator{}
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fakeClock,
		Countries: countries,
		Rates:     rates,
		Repo:      repository.Provide(),
		Generator: generator,
		Rand:      func() float64 { return 0.5 },
	}).(*Service)
	svc.SetDispatcher(func(task func()) { task() })

	return &fixture{
		svc:       svc,
		db:        db,
		countries: countries,
		rates:     rates,
		generator: generator,
		clock:     fakeClock,
	}
}

func fetched(name string, population int64, codes ...string) upstreamdomain.FetchedCountry {
	country := upstreamdomain.FetchedCountry{Name: name, Population: population}
	for _, code := range codes {
		country.Currencies = append(country.Currencies, upstreamdomain.CurrencyEntry{Code: code})
	}
	return country
}

func TestRefreshPersistsMergedRows(t *testing.T) {
	f := setup(t)
	f.countries.countries = []upstreamdomain.FetchedCountry{
		fetched("Testland", 1_000_000, "USD"),
		fetched("Nocoinia", 500_000),
		fetched("Ratelessia", 2_000_000, "XYZ"),
	}
	f.rates.rates = upstreamdomain.RateTable{"USD": decimal.NewFromInt(2)}

	result, err := f.svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.TotalCountries != 3 {
		t.Fatalf("expected total 3, got %d", result.TotalCountries)
	}

	var testland countrydomain.Country
	if err := f.db.Where("name = ?", "Testland").First(&testland).Error; err != nil {
		t.Fatalf("load Testland: %v", err)
	}
	if !testland.ExchangeRate.Valid || !testland.ExchangeRate.Decimal.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected rate 2, got %v", testland.ExchangeRate)
	}
	// population 1,000,000 * 1500 / 2 with a pinned multiplier draw
	want := decimal.NewFromInt(750_000_000)
	if !testland.EstimatedGDP.Valid || !testland.EstimatedGDP.Decimal.Equal(want) {
		t.Fatalf("expected estimate %s, got %v", want, testland.EstimatedGDP)
	}
	if !testland.LastRefreshedAt.Equal(f.clock.Now()) {
		t.Fatalf("expected refreshed_at %s, got %s", f.clock.Now(), testland.LastRefreshedAt)
	}

	var nocoinia countrydomain.Country
	if err := f.db.Where("name = ?", "Nocoinia").First(&nocoinia).Error; err != nil {
		t.Fatalf("load Nocoinia: %v", err)
	}
	if nocoinia.CurrencyCode != nil {
		t.Fatalf("expected nil currency code, got %v", *nocoinia.CurrencyCode)
	}
	if nocoinia.ExchangeRate.Valid || nocoinia.EstimatedGDP.Valid {
		t.Fatal("no-currency country must have null rate and estimate")
	}

	var ratelessia countrydomain.Country
	if err := f.db.Where("name = ?", "Ratelessia").First(&ratelessia).Error; err != nil {
		t.Fatalf("load Ratelessia: %v", err)
	}
	if ratelessia.CurrencyCode == nil || *ratelessia.CurrencyCode != "XYZ" {
		t.Fatalf("expected currency XYZ, got %v", ratelessia.CurrencyCode)
	}
	if ratelessia.ExchangeRate.Valid || ratelessia.EstimatedGDP.Valid {
		t.Fatal("unmatched currency must have null rate and estimate")
	}

	var metadata countrydomain.RefreshMetadata
	if err := f.db.First(&metadata, countrydomain.MetadataRowID).Error; err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if metadata.TotalCountries != 3 {
		t.Fatalf("expected metadata total 3, got %d", metadata.TotalCountries)
	}
	if !metadata.LastRefreshedAt.Equal(f.clock.Now()) {
		t.Fatalf("expected metadata refreshed_at %s, got %s", f.clock.Now(), metadata.LastRefreshedAt)
	}

	if len(f.generator.generated) != 1 {
		t.Fatalf("expected one artifact render, got %d", len(f.generator.generated))
	}
	rendered := f.generator.generated[0]
	if rendered.TotalCountries != 3 {
		t.Fatalf("artifact total: expected 3, got %d", rendered.TotalCountries)
	}
	if len(rendered.TopCountries) != 1 || rendered.TopCountries[0].Name != "Testland" {
		t.Fatalf("artifact top list: expected only Testland, got %v", rendered.TopCountries)
	}
}

func TestRefreshUpstreamFailureLeavesStateUntouched(t *testing.T) {
	f := setup(t)
	f.countries.countries = []upstreamdomain.FetchedCountry{fetched("Testland", 1_000_000, "USD")}
	f.rates.err = &upstreamdomain.UnavailableError{
		Source: upstreamdomain.SourceRates,
		Err:    errors.New("connection refused"),
	}

	_, err := f.svc.Refresh(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	unavailable, ok := upstreamdomain.AsUnavailable(err)
	if !ok {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavailable.Source != upstreamdomain.SourceRates {
		t.Fatalf("expected rates source, got %s", unavailable.Source)
	}

	var count int64
	if err := f.db.Model(&countrydomain.Country{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed refresh must write no rows, got %d", count)
	}

	var metadata countrydomain.RefreshMetadata
	if err := f.db.First(&metadata, countrydomain.MetadataRowID).Error; err != nil {
		t.Fatalf("load metadata: %v", err)
	}
	if metadata.TotalCountries != 0 || !metadata.LastRefreshedAt.IsZero() {
		t.Fatal("failed refresh must not touch the metadata row")
	}

	if len(f.generator.generated) != 0 {
		t.Fatal("failed refresh must not render an artifact")
	}
}

func TestRefreshIsIdempotentAcrossCaseChanges(t *testing.T) {
	f := setup(t)
	f.countries.countries = []upstreamdomain.FetchedCountry{
		fetched("Testland", 1_000_000, "USD"),
		fetched("Nocoinia", 500_000),
	}
	f.rates.rates = upstreamdomain.RateTable{"USD": decimal.NewFromInt(2)}

	if _, err := f.svc.Refresh(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	f.clock.Advance(time.Hour)
	f.countries.countries = []upstreamdomain.FetchedCountry{
		fetched("TESTLAND", 1_100_000, "USD"),
		fetched("nocoinia", 600_000),
	}

	result, err := f.svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if result.TotalCountries != 2 {
		t.Fatalf("re-refresh must not duplicate rows, got total %d", result.TotalCountries)
	}

	var count int64
	if err := f.db.Model(&countrydomain.Country{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var testland countrydomain.Country
	if err := f.db.Where("LOWER(name) = ?", "testland").First(&testland).Error; err != nil {
		t.Fatalf("load Testland: %v", err)
	}
	if testland.Population != 1_100_000 {
		t.Fatalf("expected refreshed population, got %d", testland.Population)
	}
	if !testland.LastRefreshedAt.Equal(f.clock.Now()) {
		t.Fatal("expected refreshed_at advanced to the second run")
	}
}

func TestRefreshSurvivesArtifactFailure(t *testing.T) {
	f := setup(t)
	f.countries.countries = []upstreamdomain.FetchedCountry{fetched("Testland", 1_000_000, "USD")}
	f.rates.rates = upstreamdomain.RateTable{"USD": decimal.NewFromInt(2)}
	f.generator.err = errors.New("disk full")

	result, err := f.svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("artifact failure must not fail the refresh: %v", err)
	}
	if result.TotalCountries != 1 {
		t.Fatalf("expected total 1, got %d", result.TotalCountries)
	}

	var count int64
	if err := f.db.Model(&countrydomain.Country{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected persisted row despite artifact failure, got %d", count)
	}
}

// Package service implements the refresh orchestrator: two concurrent
// upstream fetches joined before merge, one transaction for the whole
// row batch plus the metadata singleton, and best-effort artifact
// generation after commit.
//
// Concurrent refreshes are not mutually excluded. Each run opens its own
// transaction; the relational engine's locking governs interleaving and
// the last committed run wins on the metadata row.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/countrypulse/countrypulse/internal/clock"
	countrydomain "github.com/countrypulse/countrypulse/internal/country/domain"
	"github.com/countrypulse/countrypulse/internal/gdp"
	obsmetrics "github.com/countrypulse/countrypulse/internal/observability/metrics"
	"github.com/countrypulse/countrypulse/internal/refresh/domain"
	"github.com/countrypulse/countrypulse/internal/summary"
	upstreamdomain "github.com/countrypulse/countrypulse/internal/upstream/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	topCountriesLimit = 5
	artifactTimeout   = 30 * time.Second
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Countries upstreamdomain.CountriesClient
	Rates     upstreamdomain.RatesClient
	Repo      countrydomain.Repository
	Generator summary.Generator
	Metrics   *obsmetrics.Metrics `optional:"true"`
	Rand      gdp.RandSource      `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	countries upstreamdomain.CountriesClient
	rates     upstreamdomain.RatesClient
	repo      countrydomain.Repository
	generator summary.Generator
	metrics   *obsmetrics.Metrics
	estimator *gdp.Estimator

	// dispatchArtifact lets tests run artifact generation synchronously.
	dispatchArtifact func(func())
}

func New(p Params) domain.Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("refresh.service"),
		genID:            p.GenID,
		clock:            p.Clock,
		countries:        p.Countries,
		rates:            p.Rates,
		repo:             p.Repo,
		generator:        p.Generator,
		metrics:          p.Metrics,
		estimator:        gdp.NewEstimator(p.Rand),
		dispatchArtifact: func(task func()) { go task() },
	}
}

// SetDispatcher overrides how post-commit artifact generation is
// scheduled. Tests use it to run generation synchronously.
func (s *Service) SetDispatcher(dispatch func(task func())) {
	s.dispatchArtifact = dispatch
}

func (s *Service) Refresh(ctx context.Context) (domain.Result, error) {
	start := time.Now()
	result, err := s.refresh(ctx)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if _, ok := upstreamdomain.AsUnavailable(err); ok {
			outcome = "upstream_unavailable"
		}
	}
	s.metrics.RecordRefresh(ctx, outcome, time.Since(start))
	return result, err
}

func (s *Service) refresh(ctx context.Context) (domain.Result, error) {
	countries, rates, err := s.fetchBoth(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	enriched := gdp.Merge(countries, rates, s.estimator)
	refreshedAt := s.clock.Now()

	var total int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range enriched {
			record := toCountry(&enriched[i], s.genID.Generate(), refreshedAt)
			if err := s.repo.UpsertByName(ctx, tx, record); err != nil {
				return err
			}
		}

		count, err := s.repo.Count(ctx, tx)
		if err != nil {
			return err
		}
		total = count

		return s.repo.SetMetadata(ctx, tx, total, refreshedAt)
	})
	if err != nil {
		s.log.Error("refresh transaction failed", zap.Error(err))
		return domain.Result{}, err
	}

	s.log.Info("countries refreshed",
		zap.Int("fetched", len(countries)),
		zap.Int64("total", total),
	)

	s.dispatchArtifact(func() { s.generateArtifact(total) })

	return domain.Result{TotalCountries: total}, nil
}

// fetchBoth issues both upstream calls concurrently; either failure
// aborts the refresh before any transaction is opened.
func (s *Service) fetchBoth(ctx context.Context) ([]upstreamdomain.FetchedCountry, upstreamdomain.RateTable, error) {
	var (
		countries []upstreamdomain.FetchedCountry
		rates     upstreamdomain.RateTable
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.countries.Fetch(gctx)
		s.metrics.RecordUpstreamRequest(gctx, string(upstreamdomain.SourceCountries), outcomeOf(err))
		if err != nil {
			return err
		}
		countries = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := s.rates.Fetch(gctx)
		s.metrics.RecordUpstreamRequest(gctx, string(upstreamdomain.SourceRates), outcomeOf(err))
		if err != nil {
			return err
		}
		rates = fetched
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return countries, rates, nil
}

// generateArtifact runs after commit on already-durable data. Failures
// are logged and swallowed; the refresh outcome is immutable by now.
func (s *Service) generateArtifact(total int64) {
	ctx, cancel := context.WithTimeout(context.Background(), artifactTimeout)
	defer cancel()

	top, err := s.repo.TopByGDP(ctx, s.db, topCountriesLimit)
	if err != nil {
		s.warnArtifact(ctx, err)
		return
	}
	metadata, err := s.repo.GetMetadata(ctx, s.db)
	if err != nil {
		s.warnArtifact(ctx, err)
		return
	}

	data := summary.Data{TotalCountries: total}
	if metadata != nil {
		data.LastRefreshed = metadata.LastRefreshedAt
	}
	for _, country := range top {
		data.TopCountries = append(data.TopCountries, summary.TopCountry{
			Name:         country.Name,
			EstimatedGDP: country.EstimatedGDP.Decimal,
		})
	}

	if err := s.generator.Generate(data); err != nil {
		s.warnArtifact(ctx, err)
		return
	}
	s.log.Info("summary artifact generated", zap.String("path", s.generator.ArtifactPath()))
}

func (s *Service) warnArtifact(ctx context.Context, err error) {
	s.metrics.RecordArtifactFailure(ctx)
	s.log.Warn("summary artifact generation failed", zap.Error(err))
}

func toCountry(record *gdp.Enriched, id snowflake.ID, refreshedAt time.Time) *countrydomain.Country {
	return &countrydomain.Country{
		ID:              id,
		Name:            record.Name,
		Capital:         record.Capital,
		Region:          record.Region,
		Population:      record.Population,
		CurrencyCode:    record.CurrencyCode,
		ExchangeRate:    record.ExchangeRate,
		EstimatedGDP:    record.EstimatedGDP,
		FlagURL:         record.FlagURL,
		LastRefreshedAt: refreshedAt,
	}
}

func outcomeOf(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

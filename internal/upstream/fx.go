package upstream

import (
	"github.com/countrypulse/countrypulse/internal/config"
	"github.com/countrypulse/countrypulse/internal/upstream/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("upstream",
	fx.Provide(provideCountriesClient),
	fx.Provide(provideRatesClient),
)

func provideCountriesClient(cfg config.Config, log *zap.Logger) domain.CountriesClient {
	return NewCountriesClient(cfg.CountriesURL, cfg.UpstreamTimeout, log)
}

func provideRatesClient(cfg config.Config, log *zap.Logger) domain.RatesClient {
	return NewRatesClient(cfg.ExchangeRateURL, cfg.UpstreamTimeout, log)
}

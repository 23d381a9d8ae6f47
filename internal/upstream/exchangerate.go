package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/countrypulse/countrypulse/internal/upstream/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ratesClient struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewRatesClient builds the exchange-rate fetcher.
func NewRatesClient(url string, timeout time.Duration, log *zap.Logger) domain.RatesClient {
	return &ratesClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log.Named("upstream.rates"),
	}
}

type ratesResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (c *ratesClient) Fetch(ctx context.Context) (domain.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.UnavailableError{Source: domain.SourceRates, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("rates fetch failed", zap.Error(err))
		return nil, &domain.UnavailableError{Source: domain.SourceRates, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn("rates fetch returned non-success status", zap.Int("status", resp.StatusCode))
		return nil, &domain.UnavailableError{
			Source: domain.SourceRates,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var payload ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Warn("rates response decode failed", zap.Error(err))
		return nil, &domain.UnavailableError{Source: domain.SourceRates, Err: err}
	}

	return domain.RateTable(payload.Rates), nil
}

package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/countrypulse/countrypulse/internal/upstream/domain"
	"go.uber.org/zap"
)

type countriesClient struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewCountriesClient builds the RestCountries fetcher. Every failure mode
// is normalized to an UnavailableError; there are no retries here.
func NewCountriesClient(url string, timeout time.Duration, log *zap.Logger) domain.CountriesClient {
	return &countriesClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log.Named("upstream.countries"),
	}
}

func (c *countriesClient) Fetch(ctx context.Context) ([]domain.FetchedCountry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &domain.UnavailableError{Source: domain.SourceCountries, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("countries fetch failed", zap.Error(err))
		return nil, &domain.UnavailableError{Source: domain.SourceCountries, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn("countries fetch returned non-success status", zap.Int("status", resp.StatusCode))
		return nil, &domain.UnavailableError{
			Source: domain.SourceCountries,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var countries []domain.FetchedCountry
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		c.log.Warn("countries response decode failed", zap.Error(err))
		return nil, &domain.UnavailableError{Source: domain.SourceCountries, Err: err}
	}

	return countries, nil
}

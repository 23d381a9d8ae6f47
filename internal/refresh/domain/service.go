package domain

import "context"

// Result is the caller-visible outcome of one refresh run.
type Result struct {
	TotalCountries int64 `json:"total_countries"`
}

// Service coordinates the fetch, merge, and persist pipeline.
type Service interface {
	Refresh(ctx context.Context) (Result, error)
}

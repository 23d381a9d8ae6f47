package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Country, error)
	GetByName(ctx context.Context, name string) (Country, error)
	Delete(ctx context.Context, name string) error
	Status(ctx context.Context) (RefreshMetadata, error)
}

var (
	ErrNotFound    = errors.New("country_not_found")
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidSort = errors.New("invalid_sort")
)

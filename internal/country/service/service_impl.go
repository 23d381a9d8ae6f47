package service

import (
	"context"
	"strings"

	"github.com/countrypulse/countrypulse/internal/country/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("country.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Country, error) {
	sort := strings.TrimSpace(req.Sort)
	switch sort {
	case "", domain.SortGDPAsc, domain.SortGDPDesc, domain.SortNameAsc, domain.SortNameDesc:
	default:
		return nil, domain.ErrInvalidSort
	}

	countries, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Region:   strings.TrimSpace(req.Region),
		Currency: strings.TrimSpace(req.Currency),
		Sort:     sort,
	})
	if err != nil {
		return nil, err
	}
	if countries == nil {
		countries = []domain.Country{}
	}
	return countries, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (domain.Country, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Country{}, domain.ErrInvalidName
	}

	country, err := s.repo.GetByName(ctx, s.db, name)
	if err != nil {
		return domain.Country{}, err
	}
	if country == nil {
		return domain.Country{}, domain.ErrNotFound
	}
	return *country, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidName
	}

	deleted, err := s.repo.DeleteByName(ctx, s.db, name)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Info("country deleted", zap.String("name", name))
	return nil
}

func (s *Service) Status(ctx context.Context) (domain.RefreshMetadata, error) {
	metadata, err := s.repo.GetMetadata(ctx, s.db)
	if err != nil {
		return domain.RefreshMetadata{}, err
	}
	if metadata == nil {
		return domain.RefreshMetadata{ID: domain.MetadataRowID}, nil
	}
	return *metadata, nil
}

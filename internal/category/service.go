package category

import (
	"context"
	"strings"

	"zidoyvelg-be/internal/logger"

	"go.uber.org/zap"
)

// Service backs the storefront filter dropdowns.
type Service interface {
	Facets(ctx context.Context, filter string, limit int) (*Facets, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Facets(ctx context.Context, filter string, limit int) (*Facets, error) {
	log := logger.ForLayer(ctx, "service", "Facets")

	filter = strings.TrimSpace(filter)
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	cats, err := s.repo.Counts(ctx, DimCategory, filter, limit)
	if err != nil {
		log.Error("failed to count categories", zap.Error(err))
		return nil, err
	}
	brands, err := s.repo.Counts(ctx, DimBrand, filter, limit)
	if err != nil {
		log.Error("failed to count brands", zap.Error(err))
		return nil, err
	}

	return &Facets{Categories: cats, Brands: brands}, nil
}

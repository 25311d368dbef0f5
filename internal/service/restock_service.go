package service

import (
	"context"

	"github.com/andresuchdata/restock-forecast/internal/cache"
	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/restock"
	"github.com/rs/zerolog/log"
)

type RestockService struct {
	forecast *ForecastService
	resolver *restock.Resolver
	cache    cache.RestockCache
}

func NewRestockService(forecast *ForecastService, resolver *restock.Resolver, cacheImpl cache.RestockCache) *RestockService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRestockCache()
	}
	return &RestockService{forecast: forecast, resolver: resolver, cache: cacheImpl}
}

// RunAndRecommend runs the forecast and resolves the freshly published
// snapshot.
func (s *RestockService) RunAndRecommend(ctx context.Context) (*domain.RestockReport, error) {
	result, err := s.forecast.Run(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.resolver.Resolve(ctx, result.Predictions)
	if err != nil {
		return nil, err
	}

	s.store(ctx, report)
	return report, nil
}

// Latest resolves the stored snapshot without running the forecast.
func (s *RestockService) Latest(ctx context.Context) (*domain.RestockReport, error) {
	if report, ok, err := s.cache.GetReport(ctx); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("restock: cache get report failed")
	}

	predictions, err := s.forecast.ListPredictions(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.resolver.Resolve(ctx, predictions)
	if err != nil {
		return nil, err
	}

	s.store(ctx, report)
	return report, nil
}

// HandlePublish drops cached reports once a new snapshot is published.
func (s *RestockService) HandlePublish(ctx context.Context, records []domain.PredictionRecord) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Int("predictions", len(records)).Msg("restock: cache invalidate failed")
	}
}

// HandleStockChange drops cached reports once stock levels change, since
// shortages are computed against current stock.
func (s *RestockService) HandleStockChange(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("restock: cache invalidate after stock change failed")
	}
}

func (s *RestockService) store(ctx context.Context, report *domain.RestockReport) {
	if err := s.cache.SetReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("restock: cache set report failed")
	}
}

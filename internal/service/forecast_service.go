package service

import (
	"context"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/pipeline"
	"github.com/andresuchdata/restock-forecast/internal/repository"
)

type ForecastService struct {
	orchestrator *pipeline.Orchestrator
	predictions  repository.PredictionRepository
}

func NewForecastService(orchestrator *pipeline.Orchestrator, predictions repository.PredictionRepository) *ForecastService {
	return &ForecastService{orchestrator: orchestrator, predictions: predictions}
}

// Run executes one full forecast run and publishes the snapshot.
func (s *ForecastService) Run(ctx context.Context) (*pipeline.RunResult, error) {
	return s.orchestrator.Run(ctx)
}

// ListPredictions returns the currently published snapshot.
func (s *ForecastService) ListPredictions(ctx context.Context) ([]domain.PredictionRecord, error) {
	return s.predictions.ListPredictions(ctx)
}

func (s *ForecastService) LatestRuns(ctx context.Context, limit int) ([]*pipeline.ForecastRun, error) {
	return s.orchestrator.Runs().LatestRuns(ctx, limit)
}

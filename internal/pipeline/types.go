package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
)

// Model is the trained predictor together with its item encoder.
type Model interface {
	Encoder
	// Predict returns one raw quantity per vector, in vector order.
	Predict(ctx context.Context, vectors []domain.NextDayFeatureVector) ([]float64, error)
	Version() string
}

// Adjuster turns a raw model output into a published quantity.
type Adjuster interface {
	Adjust(raw float64) int
}

// PipelineConfig holds tunables for a forecast run
type PipelineConfig struct {
	FeatureWorkers int // Number of concurrent feature workers
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		FeatureWorkers: 1,
	}
}

// ForecastRun tracks a single execution of the forecast pipeline
type ForecastRun struct {
	ID           int64            `json:"id" db:"id"`
	Status       domain.RunStatus `json:"status" db:"status"`
	ModelVersion string           `json:"model_version" db:"model_version"`
	OrdersRead   int              `json:"orders_read" db:"orders_read"`
	InvalidDates int              `json:"invalid_dates" db:"invalid_dates"`
	SeriesRows   int              `json:"series_rows" db:"series_rows"`
	FeaturedRows int              `json:"featured_rows" db:"featured_rows"`
	Predictions  int              `json:"predictions" db:"predictions"`
	StartedAt    time.Time        `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage string           `json:"error_message,omitempty" db:"error_message"`
}

// RunResult is what a successful run published.
type RunResult struct {
	Run         *ForecastRun              `json:"run"`
	Predictions []domain.PredictionRecord `json:"predictions"`
}

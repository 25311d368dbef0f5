package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrNoModel is returned when a run is started without a loaded model.
var ErrNoModel = errors.New("forecast model not loaded")

// PublishHook runs after a snapshot has been published.
type PublishHook func(ctx context.Context, records []domain.PredictionRecord)

// Orchestrator drives one forecast run: read orders and items, build the
// daily series, engineer features, project the next day, predict, perturb,
// and publish the snapshot.
type Orchestrator struct {
	orders      repository.OrderRepository
	items       repository.ItemRepository
	predictions repository.PredictionRepository
	runs        RunRecorder

	model    Model
	adjuster Adjuster
	features *FeatureEngineer
	hooks    []PublishHook
	now      func() time.Time
}

// NewOrchestrator creates a new Orchestrator. runs may be nil, in which
// case run bookkeeping stays in memory.
func NewOrchestrator(
	orders repository.OrderRepository,
	items repository.ItemRepository,
	predictions repository.PredictionRepository,
	runs RunRecorder,
	model Model,
	adjuster Adjuster,
	cfg PipelineConfig,
) *Orchestrator {
	if runs == nil {
		runs = NewMemoryRecorder()
	}
	return &Orchestrator{
		orders:      orders,
		items:       items,
		predictions: predictions,
		runs:        runs,
		model:       model,
		adjuster:    adjuster,
		features:    NewFeatureEngineer(cfg.FeatureWorkers),
		now:         time.Now,
	}
}

// OnPublish registers a hook called after every successful publish.
func (o *Orchestrator) OnPublish(hook PublishHook) {
	o.hooks = append(o.hooks, hook)
}

// Runs exposes the run recorder.
func (o *Orchestrator) Runs() RunRecorder {
	return o.runs
}

// Run executes the pipeline once. Any failure before the publish step
// leaves the previously published snapshot untouched.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	if o.model == nil {
		return nil, ErrNoModel
	}

	run := &ForecastRun{
		Status:       domain.RunProcessing,
		ModelVersion: o.model.Version(),
		StartedAt:    o.now(),
	}
	if err := o.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record forecast run: %w", err)
	}

	records, err := o.execute(ctx, run)
	if err != nil {
		o.finish(ctx, run, err)
		return nil, err
	}

	o.finish(ctx, run, nil)
	for _, hook := range o.hooks {
		hook(ctx, records)
	}

	return &RunResult{Run: run, Predictions: records}, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *ForecastRun) ([]domain.PredictionRecord, error) {
	var (
		orders []domain.OrderRecord
		items  []domain.Item
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = o.orders.ListOrders(gctx)
		if err != nil {
			return fmt.Errorf("load orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = o.items.ListItems(gctx)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	run.OrdersRead = len(orders)

	series, invalid := buildSeries(orders, items)
	run.InvalidDates = invalid
	run.SeriesRows = len(series)
	if invalid > 0 {
		log.Warn().Int("orders", invalid).Msg("Dropped orders with unparseable dates")
	}

	featured, err := o.features.Featurize(ctx, series)
	if err != nil {
		return nil, fmt.Errorf("featurize: %w", err)
	}
	run.FeaturedRows = len(featured)

	vectors, err := Project(featured, o.model)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	raw, err := o.model.Predict(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(raw) != len(vectors) {
		return nil, fmt.Errorf("predict: got %d outputs for %d vectors", len(raw), len(vectors))
	}

	records := make([]domain.PredictionRecord, len(vectors))
	for i, v := range vectors {
		records[i] = domain.PredictionRecord{
			ItemID:            v.ItemID,
			PredictedQuantity: o.adjuster.Adjust(raw[i]),
		}
	}

	if err := o.predictions.Publish(ctx, records); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	run.Predictions = len(records)

	log.Info().
		Int64("run_id", run.ID).
		Str("model_version", run.ModelVersion).
		Int("orders", run.OrdersRead).
		Int("series_rows", run.SeriesRows).
		Int("featured_rows", run.FeaturedRows).
		Int("predictions", run.Predictions).
		Msg("Forecast run published")

	return records, nil
}

// finish marks the run terminal. Bookkeeping failures are logged only; the
// published snapshot is authoritative.
func (o *Orchestrator) finish(ctx context.Context, run *ForecastRun, runErr error) {
	completed := o.now()
	run.CompletedAt = &completed
	run.Status = domain.RunCompleted
	if runErr != nil {
		run.Status = domain.RunFailed
		run.ErrorMessage = runErr.Error()
		log.Error().Err(runErr).Int64("run_id", run.ID).Msg("Forecast run failed")
	}

	if err := o.runs.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn().Err(err).Int64("run_id", run.ID).Msg("Failed to update forecast run")
	}
}

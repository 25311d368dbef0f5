package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/jmoiron/sqlx"
)

// RunRecorder persists forecast run bookkeeping.
type RunRecorder interface {
	CreateRun(ctx context.Context, run *ForecastRun) error
	UpdateRun(ctx context.Context, run *ForecastRun) error
	LatestRuns(ctx context.Context, limit int) ([]*ForecastRun, error)
}

// Repository handles database operations for forecast run tracking
type Repository struct {
	db *sqlx.DB
}

var _ RunRecorder = (*Repository)(nil)

// NewRepository creates a new run repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateRun inserts a run record and sets its ID
func (r *Repository) CreateRun(ctx context.Context, run *ForecastRun) error {
	query := `
		INSERT INTO forecast_runs (
			status, model_version, orders_read, invalid_dates,
			series_rows, featured_rows, predictions, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	return r.db.QueryRowContext(
		ctx, query,
		run.Status, run.ModelVersion, run.OrdersRead, run.InvalidDates,
		run.SeriesRows, run.FeaturedRows, run.Predictions, run.StartedAt,
	).Scan(&run.ID)
}

// UpdateRun updates an existing run
func (r *Repository) UpdateRun(ctx context.Context, run *ForecastRun) error {
	query := `
		UPDATE forecast_runs
		SET status = $1, orders_read = $2, invalid_dates = $3, series_rows = $4,
		    featured_rows = $5, predictions = $6, completed_at = $7, error_message = $8
		WHERE id = $9
	`

	_, err := r.db.ExecContext(
		ctx, query,
		run.Status, run.OrdersRead, run.InvalidDates, run.SeriesRows,
		run.FeaturedRows, run.Predictions, run.CompletedAt, run.ErrorMessage, run.ID,
	)

	return err
}

// GetRun retrieves a run by ID
func (r *Repository) GetRun(ctx context.Context, id int64) (*ForecastRun, error) {
	query := `
		SELECT id, status, model_version, orders_read, invalid_dates, series_rows,
		       featured_rows, predictions, started_at, completed_at, error_message
		FROM forecast_runs
		WHERE id = $1
	`

	run := &ForecastRun{}
	err := r.db.GetContext(ctx, run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}

// LatestRuns returns the most recent runs, newest first
func (r *Repository) LatestRuns(ctx context.Context, limit int) ([]*ForecastRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, status, model_version, orders_read, invalid_dates, series_rows,
		       featured_rows, predictions, started_at, completed_at, error_message
		FROM forecast_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	var runs []*ForecastRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}

	return runs, nil
}

// MemoryRecorder keeps runs in process. Used by the CLI without a database
// and by tests.
type MemoryRecorder struct {
	mu   sync.Mutex
	runs []ForecastRun
}

var _ RunRecorder = (*MemoryRecorder)(nil)

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) CreateRun(ctx context.Context, run *ForecastRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.ID = int64(len(m.runs) + 1)
	m.runs = append(m.runs, *run)
	return nil
}

func (m *MemoryRecorder) UpdateRun(ctx context.Context, run *ForecastRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if run.ID < 1 || int(run.ID) > len(m.runs) {
		return sql.ErrNoRows
	}
	m.runs[run.ID-1] = *run
	return nil
}

func (m *MemoryRecorder) LatestRuns(ctx context.Context, limit int) ([]*ForecastRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	out := make([]*ForecastRun, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		run := m.runs[i]
		out = append(out, &run)
	}
	return out, nil
}

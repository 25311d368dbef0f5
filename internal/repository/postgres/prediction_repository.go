package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
	"github.com/jmoiron/sqlx"
)

type predictionRepository struct {
	db *DB
}

var _ repository.PredictionRepository = (*predictionRepository)(nil)

func NewPredictionRepository(db *DB) repository.PredictionRepository {
	return &predictionRepository{db: db}
}

// Publish deletes the previous snapshot and inserts records in a single
// transaction, so readers see either the old or the new snapshot.
func (r *predictionRepository) Publish(ctx context.Context, records []domain.PredictionRecord) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM predictions`); err != nil {
			return fmt.Errorf("failed to clear predictions: %w", err)
		}
		if len(records) == 0 {
			return nil
		}

		query := `
			INSERT INTO predictions (item_id, predicted_quantity)
			VALUES (:item_id, :predicted_quantity)
		`
		if _, err := tx.NamedExecContext(ctx, query, records); err != nil {
			return fmt.Errorf("failed to insert predictions: %w", err)
		}
		return nil
	})
}

func (r *predictionRepository) ListPredictions(ctx context.Context) ([]domain.PredictionRecord, error) {
	query := `SELECT item_id, predicted_quantity FROM predictions ORDER BY id`

	records := []domain.PredictionRecord{}
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("error listing predictions: %w", err)
	}
	return records, nil
}

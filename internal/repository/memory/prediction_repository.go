package memory

import (
	"context"
	"sync"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/repository"
)

// PredictionRepository holds the latest prediction snapshot. Publish swaps
// the snapshot under the lock, so readers never see it half written.
type PredictionRepository struct {
	mu       sync.RWMutex
	snapshot []domain.PredictionRecord
	// Err, when set, is returned by Publish.
	Err error
}

var _ repository.PredictionRepository = (*PredictionRepository)(nil)

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{}
}

func (r *PredictionRepository) Publish(ctx context.Context, records []domain.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.snapshot = append([]domain.PredictionRecord(nil), records...)
	return nil
}

func (r *PredictionRepository) ListPredictions(ctx context.Context) ([]domain.PredictionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.PredictionRecord(nil), r.snapshot...), nil
}

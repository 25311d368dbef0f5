package pipeline

import (
	"context"
	"sync"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/rs/zerolog/log"
)

// FeatureEngineer fans per-item feature computation out over a fixed
// number of workers. Item groups are independent, so the result is the
// same for any worker count.
type FeatureEngineer struct {
	workerCount int
}

// NewFeatureEngineer creates a feature engineer. A count below 1 means
// sequential processing.
func NewFeatureEngineer(workerCount int) *FeatureEngineer {
	if workerCount < 1 {
		workerCount = 1
	}
	return &FeatureEngineer{workerCount: workerCount}
}

type featureJob struct {
	index int
	rows  []domain.DailySeriesRow
}

// Featurize computes FeaturedRows for series rows sorted by (item, date).
// Output keeps the input order.
func (fe *FeatureEngineer) Featurize(ctx context.Context, rows []domain.DailySeriesRow) ([]domain.FeaturedRow, error) {
	groups := groupByItem(rows)
	results := make([][]domain.FeaturedRow, len(groups))

	if fe.workerCount == 1 || len(groups) < 2 {
		for i, g := range groups {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = FeaturizeItem(g)
		}
		return flatten(results), nil
	}

	workerCount := fe.workerCount
	if workerCount > len(groups) {
		workerCount = len(groups)
	}

	jobChan := make(chan featureJob, len(groups))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			processed := 0
			for job := range jobChan {
				results[job.index] = FeaturizeItem(job.rows)
				processed++
			}
			log.Debug().Int("worker", workerID).Int("items", processed).Msg("feature worker done")
		}(i)
	}

	// Enqueue jobs
	for i, g := range groups {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- featureJob{index: i, rows: g}:
		}
	}
	close(jobChan)

	wg.Wait()

	return flatten(results), nil
}

func flatten(groups [][]domain.FeaturedRow) []domain.FeaturedRow {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]domain.FeaturedRow, 0, total)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

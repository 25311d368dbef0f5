package pipeline

import (
	"math"

	"github.com/andresuchdata/restock-forecast/internal/domain"
)

// RollingWindow is the number of prior observations the rolling
// statistics are computed over.
const RollingWindow = 3

// FeaturizeItem computes lag and rolling features for one item's rows,
// which must be sorted by date. Row i is kept only when RollingWindow prior
// rows exist, so the first RollingWindow rows are always dropped.
func FeaturizeItem(rows []domain.DailySeriesRow) []domain.FeaturedRow {
	if len(rows) <= RollingWindow {
		return nil
	}

	out := make([]domain.FeaturedRow, 0, len(rows)-RollingWindow)
	window := make([]float64, RollingWindow)
	for i := RollingWindow; i < len(rows); i++ {
		for k := 0; k < RollingWindow; k++ {
			window[k] = float64(rows[i-RollingWindow+k].Quantity)
		}
		mean, std := meanStd(window)
		out = append(out, domain.FeaturedRow{
			DailySeriesRow: rows[i],
			Lag1:           float64(rows[i-1].Quantity),
			RollingMean3:   mean,
			RollingStd3:    std,
		})
	}
	return out
}

// meanStd returns the mean and the sample (n-1) standard deviation.
func meanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / (n - 1))
}

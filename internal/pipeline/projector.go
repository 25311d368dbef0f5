package pipeline

import (
	"fmt"
	"sort"

	"github.com/andresuchdata/restock-forecast/internal/domain"
)

// Encoder maps an item id to the integer category the model was trained on.
type Encoder interface {
	Encode(itemID string) (int, error)
}

// Project selects each item's latest featured row and turns it into the
// model input for the following day. The lag and rolling features are
// carried over unchanged, so they describe the latest observed day rather
// than the day being predicted. Vectors are ordered by item id.
//
// Any item the encoder does not know fails the whole projection.
func Project(rows []domain.FeaturedRow, enc Encoder) ([]domain.NextDayFeatureVector, error) {
	latest := make(map[string]domain.FeaturedRow)
	for _, row := range rows {
		cur, ok := latest[row.ItemID]
		if !ok || row.Date.After(cur.Date) {
			latest[row.ItemID] = row
		}
	}

	itemIDs := make([]string, 0, len(latest))
	for id := range latest {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	vectors := make([]domain.NextDayFeatureVector, 0, len(itemIDs))
	for _, id := range itemIDs {
		row := latest[id]
		encoded, err := enc.Encode(id)
		if err != nil {
			return nil, fmt.Errorf("encode item %s: %w", id, err)
		}
		vectors = append(vectors, domain.NextDayFeatureVector{
			ItemID:       id,
			DayOfWeek:    (row.DayOfWeek + 1) % 7,
			ItemEncoded:  encoded,
			Lag1:         row.Lag1,
			RollingMean3: row.RollingMean3,
			RollingStd3:  row.RollingStd3,
		})
	}

	return vectors, nil
}

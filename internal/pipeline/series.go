package pipeline

import (
	"sort"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/domain"
)

type seriesKey struct {
	itemID string
	date   time.Time
}

// BuildSeries turns raw orders into one row per (date, item) holding the
// number of orders placed that day, sorted by item then date. Orders with an
// unparseable date are dropped. The item join is a left join: rows whose
// item is missing from the catalog are kept with a nil Item.
func BuildSeries(orders []domain.OrderRecord, items []domain.Item) []domain.DailySeriesRow {
	rows, _ := buildSeries(orders, items)
	return rows
}

// buildSeries also reports how many orders were discarded for bad dates.
func buildSeries(orders []domain.OrderRecord, items []domain.Item) ([]domain.DailySeriesRow, int) {
	catalog := make(map[string]*domain.Item, len(items))
	for i := range items {
		if _, dup := catalog[items[i].ItemID]; dup {
			continue
		}
		catalog[items[i].ItemID] = &items[i]
	}

	invalid := 0
	index := make(map[seriesKey]int)
	rows := make([]domain.DailySeriesRow, 0)

	for _, order := range orders {
		nd := NormalizeDate(order.RawDate)
		if !nd.Valid {
			invalid++
			continue
		}

		key := seriesKey{itemID: order.ItemID, date: nd.Date}
		if i, ok := index[key]; ok {
			rows[i].Quantity++
			continue
		}

		index[key] = len(rows)
		rows = append(rows, domain.DailySeriesRow{
			Date:      nd.Date,
			DayOfWeek: nd.DayOfWeek,
			ItemID:    order.ItemID,
			Quantity:  1,
			Item:      catalog[order.ItemID],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ItemID != rows[j].ItemID {
			return rows[i].ItemID < rows[j].ItemID
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	return rows, invalid
}

// groupByItem splits sorted series rows into contiguous per-item groups.
func groupByItem(rows []domain.DailySeriesRow) [][]domain.DailySeriesRow {
	var groups [][]domain.DailySeriesRow
	start := 0
	for i := 1; i <= len(rows); i++ {
		if i == len(rows) || rows[i].ItemID != rows[start].ItemID {
			groups = append(groups, rows[start:i])
			start = i
		}
	}
	return groups
}

package pipeline

import (
	"strings"
	"time"
)

// legacyLayout is the format older order exports use, e.g. "24/02/17 13:10".
// Day, month and hour may also be unpadded ("5/3/17 9:05").
const legacyLayout = "2/1/06 15:04"

// isoLayouts are tried in order after the legacy layout fails.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// NormalizedDate is a calendar date plus its weekday with Monday=0.
// Valid is false when the raw value could not be interpreted.
type NormalizedDate struct {
	Date      time.Time
	DayOfWeek int
	Valid     bool
}

// NormalizeDate interprets raw as an order timestamp. It never panics and
// never fails: anything unparseable comes back with Valid=false.
func NormalizeDate(raw any) NormalizedDate {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return NormalizedDate{}
		}
		return fromTime(v)
	case *time.Time:
		if v == nil || v.IsZero() {
			return NormalizedDate{}
		}
		return fromTime(*v)
	case string:
		return parseDateString(v)
	case []byte:
		return parseDateString(string(v))
	default:
		return NormalizedDate{}
	}
}

func parseDateString(s string) NormalizedDate {
	s = strings.TrimSpace(s)
	if s == "" {
		return NormalizedDate{}
	}

	if t, err := time.Parse(legacyLayout, s); err == nil {
		return fromTime(t)
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return fromTime(t)
		}
	}

	return NormalizedDate{}
}

// fromTime keeps the calendar date in the timestamp's own offset.
func fromTime(t time.Time) NormalizedDate {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return NormalizedDate{
		Date:      date,
		DayOfWeek: mondayIndex(date.Weekday()),
		Valid:     true,
	}
}

func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

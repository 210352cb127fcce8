// Package aggregate turns case records into a dense per-day series.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
)

// ErrEmptyInput is returned when there are no records to start the series from
var ErrEmptyInput = errors.New("no case records to aggregate")

// ErrUndatedRecord is returned for a record without a release date
var ErrUndatedRecord = errors.New("case record has no release date")

// instant keys a count by the exact moment of a date
type instant struct {
	sec  int64
	nsec int
}

func instantOf(t time.Time) instant {
	return instant{sec: t.Unix(), nsec: t.Nanosecond()}
}

// Daily counts records per calendar day from the first record's date
// through asOf (truncated to midnight JST), inclusive.
//
// Records are expected in ascending date order; the first one defines the
// start of the window and is not searched for. A record counts towards a
// day only if its date is exactly that day's midnight instant.
func Daily(records []model.CaseRecord, asOf time.Time) ([]model.DailySummaryEntry, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	counts := make(map[instant]int, len(records))
	for i, r := range records {
		if r.Date.IsZero() {
			return nil, fmt.Errorf("record %d (no. %d): %w", i, r.No, ErrUndatedRecord)
		}
		counts[instantOf(r.Date)]++
	}

	start := records[0].Date.In(model.JST)
	end := model.Midnight(asOf)

	series := make([]model.DailySummaryEntry, 0, Days(start, end))
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		series = append(series, model.DailySummaryEntry{
			Date:     day,
			Subtotal: counts[instantOf(day)],
		})
	}

	return series, nil
}

// Days returns the number of calendar days in [start, end], or 0 if start is after end
func Days(start, end time.Time) int {
	if start.After(end) {
		return 0
	}
	return int(model.Midnight(end).Sub(model.Midnight(start)).Hours()/24) + 1
}

// Total sums the subtotals of a series
func Total(series []model.DailySummaryEntry) int {
	total := 0
	for _, e := range series {
		total += e.Subtotal
	}
	return total
}

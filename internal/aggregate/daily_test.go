package aggregate

import (
	"testing"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, model.JST)
}

func records(dates ...time.Time) []model.CaseRecord {
	out := make([]model.CaseRecord, len(dates))
	for i, d := range dates {
		out[i] = model.CaseRecord{No: i + 1, Date: d}
	}
	return out
}

func TestDaily_CountsPerDay(t *testing.T) {
	recs := records(day(2020, 3, 1), day(2020, 3, 1), day(2020, 3, 3))

	series, err := Daily(recs, day(2020, 3, 3))
	require.NoError(t, err)

	assert.Equal(t, []model.DailySummaryEntry{
		{Date: day(2020, 3, 1), Subtotal: 2},
		{Date: day(2020, 3, 2), Subtotal: 0},
		{Date: day(2020, 3, 3), Subtotal: 1},
	}, series)
}

func TestDaily_Completeness(t *testing.T) {
	recs := records(day(2020, 1, 28), day(2020, 2, 14), day(2020, 2, 29))
	asOf := time.Date(2020, 3, 10, 15, 4, 5, 0, model.JST)

	series, err := Daily(recs, asOf)
	require.NoError(t, err)

	// Jan 28 .. Mar 10 in a leap year
	require.Len(t, series, 4+29+10)
	for i := 1; i < len(series); i++ {
		assert.Equal(t, series[i-1].Date.AddDate(0, 0, 1), series[i].Date)
	}
	assert.Equal(t, day(2020, 3, 10), series[len(series)-1].Date)
	assert.Equal(t, 3, Total(series))
}

func TestDaily_AsOfInOtherZone(t *testing.T) {
	recs := records(day(2020, 3, 1))
	// 2020-03-01T16:00Z is 2020-03-02T01:00 JST
	asOf := time.Date(2020, 3, 1, 16, 0, 0, 0, time.UTC)

	series, err := Daily(recs, asOf)
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestDaily_StartAfterEnd(t *testing.T) {
	series, err := Daily(records(day(2020, 3, 5)), day(2020, 3, 1))
	require.NoError(t, err)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestDaily_EmptyInput(t *testing.T) {
	_, err := Daily(nil, day(2020, 3, 1))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Daily([]model.CaseRecord{}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDaily_UndatedRecord(t *testing.T) {
	recs := []model.CaseRecord{{No: 1}}
	series, err := Daily(recs, day(2020, 3, 2))
	assert.ErrorIs(t, err, ErrUndatedRecord)
	assert.Nil(t, series)

	recs = records(day(2020, 3, 1))
	recs = append(recs, model.CaseRecord{No: 2})
	_, err = Daily(recs, day(2020, 3, 2))
	assert.ErrorIs(t, err, ErrUndatedRecord)
}

func TestDaily_FarFutureDates(t *testing.T) {
	// beyond the int64 nanosecond range
	recs := records(day(2300, 1, 1), day(2300, 1, 2))

	series, err := Daily(recs, day(2300, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, []model.DailySummaryEntry{
		{Date: day(2300, 1, 1), Subtotal: 1},
		{Date: day(2300, 1, 2), Subtotal: 1},
	}, series)
}

func TestDaily_NonMidnightRecordNotCounted(t *testing.T) {
	recs := records(day(2020, 3, 1), day(2020, 3, 1).Add(time.Hour))

	series, err := Daily(recs, day(2020, 3, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, series[0].Subtotal)
	assert.Equal(t, 0, series[1].Subtotal)
}

func TestDaily_NoResort(t *testing.T) {
	// The first record defines the start even if later ones are earlier
	recs := records(day(2020, 3, 2), day(2020, 3, 1))

	series, err := Daily(recs, day(2020, 3, 3))
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, day(2020, 3, 2), series[0].Date)
	assert.Equal(t, 1, Total(series))
}

func TestDays(t *testing.T) {
	assert.Equal(t, 1, Days(day(2020, 3, 1), day(2020, 3, 1)))
	assert.Equal(t, 366, Days(day(2020, 1, 1), day(2020, 12, 31)))
	assert.Equal(t, 0, Days(day(2020, 3, 2), day(2020, 3, 1)))
}

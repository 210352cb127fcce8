package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fullHeader = []string{
	LabelNo, LabelReleaseDate, LabelAge, LabelSex, LabelResidence, LabelNearbyCases, LabelCloseContacts,
}

func row(no, date string) []string {
	return []string{no, date, "50代", "男性", "札幌市", "", "調査中"}
}

func TestNormalize_OneRecordPerRow(t *testing.T) {
	table := model.RawTable{
		fullHeader,
		row("1", "1/28"),
		row("2", "2/14"),
		row("3", "2/14"),
	}

	records, err := Normalize(table, Options{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 1, records[0].No)
	assert.Equal(t, time.Date(2020, 1, 28, 0, 0, 0, 0, model.JST), records[0].Date)
	assert.Equal(t, "50代", records[0].Age)
	assert.Equal(t, "男性", records[0].Sex)
	assert.Equal(t, "札幌市", records[0].Place)
	assert.Equal(t, "調査中", records[0].ContactPerson)
	assert.Nil(t, records[0].Others)
}

func TestNormalize_YearRollover(t *testing.T) {
	table := model.RawTable{
		{LabelNo, LabelReleaseDate},
		{"1", "12/30"},
		{"2", "12/31"},
		{"3", "1/1"},
		{"4", "1/15"},
		{"5", "2/3"},
	}

	records, err := Normalize(table, Options{BaseYear: 2020})
	require.NoError(t, err)

	var years []int
	for _, r := range records {
		years = append(years, r.Date.Year())
	}
	assert.Equal(t, []int{2020, 2020, 2021, 2021, 2021}, years)
}

func TestNormalize_SecondWrapStaysAtNextYear(t *testing.T) {
	table := model.RawTable{
		{LabelReleaseDate},
		{"11/1"},
		{"1/1"},
		{"12/1"},
		{"1/1"},
	}

	records, err := Normalize(table, Options{BaseYear: 2020})
	require.NoError(t, err)
	assert.Equal(t, 2020, records[0].Date.Year())
	assert.Equal(t, 2021, records[1].Date.Year())
	assert.Equal(t, 2021, records[2].Date.Year())
	assert.Equal(t, 2021, records[3].Date.Year())
}

func TestNormalize_DefaultBaseYear(t *testing.T) {
	records, err := Normalize(model.RawTable{{LabelReleaseDate}, {"3/5"}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "2020-03-05T00:00:00+09:00", records[0].Date.Format(time.RFC3339))
}

func TestNormalize_PublishedDateSynonym(t *testing.T) {
	header := []string{LabelNo, LabelPublishedDate}
	table := model.RawTable{header, {"7", "3/1"}}

	records, err := Normalize(table, Options{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 1, 0, 0, 0, 0, model.JST), records[0].Date)
	assert.Equal(t, LabelPublishedDate, header[1], "header must not be rewritten")
}

func TestNormalize_FullWidthCaseNumber(t *testing.T) {
	records, err := Normalize(model.RawTable{{LabelNo}, {"１２３"}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 123, records[0].No)
}

func TestNormalize_StringCleanup(t *testing.T) {
	table := model.RawTable{
		{LabelSex, LabelResidence, LabelNearbyCases, LabelCloseContacts, LabelAge},
		{"  女性\n", "Sapporo\r\n", "contact\ncase", "a\r\nb", " 60代 "},
	}

	records, err := Normalize(table, Options{})
	require.NoError(t, err)
	r := records[0]
	assert.Equal(t, "女性", r.Sex)
	assert.Equal(t, "Sapporo", r.Place)
	assert.Equal(t, "contact case", r.OtherPatient)
	assert.Equal(t, "ab", r.ContactPerson)
	assert.Equal(t, " 60代 ", r.Age)
}

func TestNormalize_LastUnrecognizedColumnWins(t *testing.T) {
	table := model.RawTable{
		{"備考", LabelNo, "症状"},
		{"first", "1", "last"},
	}

	records, err := Normalize(table, Options{})
	require.NoError(t, err)
	require.NotNil(t, records[0].Others)
	assert.Equal(t, "last", *records[0].Others)
}

func TestNormalize_SchemaMismatch(t *testing.T) {
	table := model.RawTable{
		{LabelNo, LabelReleaseDate},
		{"1", "3/1"},
		{"2"},
	}

	_, err := Normalize(table, Options{})
	var sm *SchemaMismatchError
	require.True(t, errors.As(err, &sm))
	assert.Equal(t, 2, sm.Row)
	assert.Equal(t, 2, sm.Want)
	assert.Equal(t, 1, sm.Got)
}

func TestNormalize_NoHeader(t *testing.T) {
	_, err := Normalize(nil, Options{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestNormalize_HeaderOnly(t *testing.T) {
	records, err := Normalize(model.RawTable{fullHeader}, Options{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNormalize_MalformedFields(t *testing.T) {
	tests := []struct {
		name   string
		header string
		value  string
		field  FieldKind
	}{
		{"non-numeric case number", LabelNo, "abc", FieldNo},
		{"negative case number", LabelNo, "-4", FieldNo},
		{"missing slash", LabelReleaseDate, "0301", FieldReleaseDate},
		{"non-numeric month", LabelReleaseDate, "Mar/01", FieldReleaseDate},
		{"non-numeric day", LabelReleaseDate, "3/x", FieldReleaseDate},
		{"month out of range", LabelReleaseDate, "13/01", FieldReleaseDate},
		{"day out of range", LabelReleaseDate, "2/30", FieldReleaseDate},
		{"day zero", LabelPublishedDate, "4/0", FieldReleaseDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := model.RawTable{{tt.header}, {tt.value}}
			_, err := Normalize(table, Options{})

			var mf *MalformedFieldError
			require.True(t, errors.As(err, &mf), "expected MalformedFieldError, got %v", err)
			assert.Equal(t, 1, mf.Row)
			assert.Equal(t, tt.header, mf.Column)
			assert.Equal(t, tt.value, mf.Value)
			assert.Equal(t, tt.field, mf.Field)
			assert.Contains(t, mf.Error(), "("+tt.field.String()+")")
			assert.NotNil(t, errors.Unwrap(mf))
		})
	}
}

func TestNormalize_LeapDay(t *testing.T) {
	records, err := Normalize(model.RawTable{{LabelReleaseDate}, {"2/29"}}, Options{BaseYear: 2020})
	require.NoError(t, err)
	assert.Equal(t, 29, records[0].Date.Day())

	_, err = Normalize(model.RawTable{{LabelReleaseDate}, {"2/29"}}, Options{BaseYear: 2021})
	assert.Error(t, err)
}

func TestParseMonthDay_FullWidth(t *testing.T) {
	month, day, err := ParseMonthDay("１２／０５")
	require.NoError(t, err)
	assert.Equal(t, 12, month)
	assert.Equal(t, 5, day)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FieldReleaseDate, KindOf(LabelPublishedDate))
	assert.Equal(t, FieldReleaseDate, KindOf(LabelReleaseDate))
	assert.Equal(t, FieldNo, KindOf("No."))
	assert.Equal(t, FieldOther, KindOf("no."))
	assert.Equal(t, "others", FieldOther.String())
}

func TestYearState_Advance(t *testing.T) {
	s := yearState{base: 2020, year: 2020}
	s = s.advance(12)
	assert.Equal(t, yearState{base: 2020, prevMonth: 12, year: 2020}, s)
	s = s.advance(1)
	assert.Equal(t, yearState{base: 2020, prevMonth: 1, year: 2021}, s)
	s = s.advance(1)
	assert.Equal(t, yearState{base: 2020, prevMonth: 1, year: 2021}, s)
	s = s.advance(12)
	s = s.advance(1)
	assert.Equal(t, yearState{base: 2020, prevMonth: 1, year: 2021}, s, "no second rollover")
}

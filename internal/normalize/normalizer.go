// Package normalize converts the raw case table into typed case records.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"golang.org/x/text/width"
)

// DefaultBaseYear is the year assumed for the first release date in a table
const DefaultBaseYear = 2020

// Options tunes normalization
type Options struct {
	BaseYear int // Year of the first release date; 0 means DefaultBaseYear
}

// yearState is the accumulator of the year-inference fold
type yearState struct {
	base      int
	prevMonth int
	year      int
}

// advance returns the state after observing month.
// A month smaller than the previous one means the calendar wrapped;
// the year rolls over at most once, to base+1.
func (s yearState) advance(month int) yearState {
	year := s.year
	if month < s.prevMonth && year == s.base {
		year++
	}
	return yearState{base: s.base, prevMonth: month, year: year}
}

// Normalize maps every data row of table to a CaseRecord, in table order.
// The header row is not modified.
func Normalize(table model.RawTable, opts Options) ([]model.CaseRecord, error) {
	if len(table) == 0 {
		return nil, ErrNoHeader
	}

	baseYear := opts.BaseYear
	if baseYear == 0 {
		baseYear = DefaultBaseYear
	}

	header := table.Header()
	kinds := ResolveHeader(header)
	rows := table.Rows()

	records := make([]model.CaseRecord, 0, len(rows))
	state := yearState{base: baseYear, year: baseYear}

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, &SchemaMismatchError{Row: i + 1, Want: len(header), Got: len(row)}
		}

		record, next, err := normalizeRow(header, kinds, row, state)
		if err != nil {
			var mf *MalformedFieldError
			if errors.As(err, &mf) {
				mf.Row = i + 1
			}
			return nil, err
		}

		records = append(records, record)
		state = next
	}

	return records, nil
}

// normalizeRow converts one row, left to right in header order
func normalizeRow(header []string, kinds []FieldKind, row []string, state yearState) (model.CaseRecord, yearState, error) {
	var record model.CaseRecord

	for col, kind := range kinds {
		cell := row[col]

		switch kind {
		case FieldNo:
			no, err := ParseCaseNumber(cell)
			if err != nil {
				return record, state, &MalformedFieldError{Column: header[col], Field: kind, Value: cell, Err: err}
			}
			record.No = no

		case FieldReleaseDate:
			month, day, err := ParseMonthDay(cell)
			if err != nil {
				return record, state, &MalformedFieldError{Column: header[col], Field: kind, Value: cell, Err: err}
			}
			next := state.advance(month)
			date, err := releaseDate(next.year, month, day)
			if err != nil {
				return record, state, &MalformedFieldError{Column: header[col], Field: kind, Value: cell, Err: err}
			}
			record.Date = date
			state = next

		case FieldAge:
			record.Age = cell

		case FieldSex:
			record.Sex = strings.TrimSpace(cell)

		case FieldResidence:
			record.Place = dropLineBreaks.Replace(cell)

		case FieldNearbyCases:
			record.OtherPatient = spaceLineBreaks.Replace(cell)

		case FieldCloseContacts:
			record.ContactPerson = dropLineBreaks.Replace(cell)

		default:
			// last unrecognized column wins
			other := cell
			record.Others = &other
		}
	}

	return record, state, nil
}

// NarrowDigits maps full-width forms (U+FF01..U+FF5E) to their ASCII equivalents
func NarrowDigits(s string) string {
	return width.Narrow.String(s)
}

// ParseCaseNumber parses a case number that may be written in full-width digits
func ParseCaseNumber(raw string) (int, error) {
	s := strings.TrimSpace(NarrowDigits(raw))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse case number: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative case number %d", n)
	}
	return n, nil
}

// ParseMonthDay parses an "MM/DD" cell
func ParseMonthDay(raw string) (month, day int, err error) {
	parts := strings.Split(NarrowDigits(raw), "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want MM/DD, got %d part(s)", len(parts))
	}

	month, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse month: %w", err)
	}
	day, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse day: %w", err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month %d out of range", month)
	}
	return month, day, nil
}

// releaseDate builds midnight JST, rejecting days time.Date would roll over
func releaseDate(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, model.JST)
	if day < 1 || t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("day %d out of range for %d-%02d", day, year, month)
	}
	return t, nil
}

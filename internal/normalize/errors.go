package normalize

import (
	"errors"
	"fmt"
)

// ErrNoHeader is returned for a table without a header row
var ErrNoHeader = errors.New("table has no header row")

// SchemaMismatchError reports a data row whose shape differs from the header
type SchemaMismatchError struct {
	Row  int // 1-based data row index
	Want int // header cell count
	Got  int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("row %d: has %d cells, header has %d", e.Row, e.Got, e.Want)
}

// MalformedFieldError reports a cell that cannot be converted to its typed form
type MalformedFieldError struct {
	Row    int    // 1-based data row index
	Column string // header label
	Field  FieldKind
	Value  string // raw cell text
	Err    error
}

func (e *MalformedFieldError) Error() string {
	return fmt.Sprintf("row %d: column %q (%s): malformed value %q: %v", e.Row, e.Column, e.Field, e.Value, e.Err)
}

func (e *MalformedFieldError) Unwrap() error {
	return e.Err
}

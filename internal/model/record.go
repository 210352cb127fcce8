package model

import "time"

// JST is the fixed UTC+9 offset every date in the feed is expressed in
var JST = time.FixedZone("JST", 9*60*60)

// RawTable is a table as extracted from the page.
// Row 0 holds the header labels, the remaining rows hold data cells
// aligned positionally to the header.
type RawTable [][]string

// Header returns the header row, or nil for an empty table
func (t RawTable) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Rows returns the data rows
func (t RawTable) Rows() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// CaseRecord is one normalized case
type CaseRecord struct {
	No            int       `json:"no"`             // Case sequence number
	Date          time.Time `json:"date"`           // Release date, midnight JST
	Age           string    `json:"age"`            // Age group, verbatim
	Sex           string    `json:"sex"`            // Sex, trimmed
	Place         string    `json:"place"`          // Residence, line breaks removed
	OtherPatient  string    `json:"other_patient"`  // Nearby cases, line breaks as spaces
	ContactPerson string    `json:"contact_person"` // Close contacts, line breaks removed
	Others        *string   `json:"others,omitempty"`
}

// DailySummaryEntry is the number of cases released on one calendar day
type DailySummaryEntry struct {
	Date     time.Time `json:"date"`
	Subtotal int       `json:"subtotal"`
}

// PatientsDocument is the published case list
type PatientsDocument struct {
	LastUpdate time.Time    `json:"last_update"`
	Data       []CaseRecord `json:"data"`
}

// SummaryDocument is the published daily series
type SummaryDocument struct {
	LastUpdate time.Time           `json:"last_update"`
	Data       []DailySummaryEntry `json:"data"`
}

// Midnight truncates t to the start of its calendar day in JST
func Midnight(t time.Time) time.Time {
	t = t.In(JST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, JST)
}

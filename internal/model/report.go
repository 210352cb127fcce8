package model

import "time"

// Report is the result of running one source through the pipeline
type Report struct {
	Source    string    `json:"source"`     // Short name of the source (used for file names)
	SourceURL string    `json:"source_url"` // URL that was fetched
	FetchedAt time.Time `json:"fetched_at"` // Capture timestamp handed to the core
	FetchMeta FetchMeta `json:"fetch_meta"` // HTTP metadata
	FromCache bool      `json:"from_cache"` // Whether the page came from the snapshot cache

	Patients PatientsDocument `json:"patients"`
	Summary  SummaryDocument  `json:"summary"`
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	Charset      string            `json:"charset,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Snapshot is a fetched page as stored in the page cache.
// HTML is already decoded to UTF-8.
type Snapshot struct {
	URL       string    `json:"url"`
	HTML      string    `json:"html"`
	Meta      FetchMeta `json:"meta"`
	FetchedAt time.Time `json:"fetched_at"`
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/casefeed/internal/model"
)

// Published file names, as consumed by the dashboard
const (
	PatientsFile = "patients.json"
	SummaryFile  = "patients_summary.json"
)

// Renderer writes published documents as JSON
type Renderer struct {
	indent string
	stdout io.Writer
}

// NewRenderer creates a renderer; an empty indent writes compact JSON
func NewRenderer(indent string) *Renderer {
	return &Renderer{indent: indent, stdout: os.Stdout}
}

// Encode writes v to w. Non-ASCII text and HTML characters are kept as is.
func (r *Renderer) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	return enc.Encode(v)
}

// RenderJSON writes v to path, or to stdout when path is "" or "-"
func (r *Renderer) RenderJSON(v any, path string) (err error) {
	if path == "" || path == "-" {
		return r.Encode(r.stdout, v)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	if err := r.Encode(f, v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// RenderReport writes both documents of report into dir
func (r *Renderer) RenderReport(dir string, report *model.Report) error {
	if err := r.RenderJSON(report.Patients, filepath.Join(dir, PatientsFile)); err != nil {
		return err
	}
	return r.RenderJSON(report.Summary, filepath.Join(dir, SummaryFile))
}

package worker

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/casefeed/internal/model"
)

// Scanner scans one source
type Scanner interface {
	Scan(ctx context.Context, src model.Source) (*model.Report, error)
}

// ScanJob scans a single source
type ScanJob struct {
	Index   int
	Source  model.Source
	Scanner Scanner
}

// Execute runs the scan
func (j *ScanJob) Execute(ctx context.Context) Result {
	report, err := j.Scanner.Scan(ctx, j.Source)
	return &ScanResult{
		Index:  j.Index,
		Source: j.Source,
		Report: report,
		Error:  err,
	}
}

// ScanResult is the outcome of a ScanJob
type ScanResult struct {
	Index  int
	Source model.Source
	Report *model.Report
	Error  error
}

// GetError returns the scan error, if any
func (r *ScanResult) GetError() error {
	return r.Error
}

// BatchProcessor scans many sources concurrently
type BatchProcessor struct {
	scanner     Scanner
	concurrency int
	logger      *slog.Logger
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(scanner Scanner, concurrency int, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		scanner:     scanner,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ProcessSources scans every source and returns results in input order.
// Sources never submitted because ctx ended are reported with ctx's error.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []model.Source) []*ScanResult {
	if len(sources) == 0 {
		return []*ScanResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		for i, src := range sources {
			if !pool.Submit(&ScanJob{Index: i, Source: src, Scanner: b.scanner}) {
				break
			}
		}
		pool.Close()
	}()

	out := make([]*ScanResult, len(sources))
	for result := range pool.Results() {
		r := result.(*ScanResult)
		if r.Error != nil {
			b.logger.Warn("scan failed", "source", r.Source.Name, "error", r.Error)
		} else {
			b.logger.Debug("scan finished", "source", r.Source.Name, "records", len(r.Report.Patients.Data))
		}
		out[r.Index] = r
	}

	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("not scanned")
			}
			out[i] = &ScanResult{Index: i, Source: sources[i], Error: err}
		}
	}

	return out
}

// ProcessFile reads sources from a file and scans them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, name func(string) model.Source) ([]*ScanResult, error) {
	sources, err := ReadSourcesFromFile(filePath, name)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one source per line, either "<url>" or
// "<name> <url>". Blank lines and # comments are skipped, duplicate URLs
// are dropped. name derives a source from a bare URL.
func ReadSourcesFromFile(filePath string, name func(string) model.Source) ([]model.Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []model.Source
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var src model.Source
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			src = name(fields[0])
		case 2:
			src = model.Source{Name: fields[0], URL: fields[1]}
		default:
			return nil, fmt.Errorf("malformed source line %q", line)
		}

		if !seen[src.URL] {
			seen[src.URL] = true
			sources = append(sources, src)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

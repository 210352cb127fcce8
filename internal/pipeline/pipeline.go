// Package pipeline drives fetch, table extraction, normalization and
// aggregation for one source page.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/casefeed/internal/aggregate"
	"github.com/ppiankov/casefeed/internal/cache"
	"github.com/ppiankov/casefeed/internal/extract"
	"github.com/ppiankov/casefeed/internal/model"
	"github.com/ppiankov/casefeed/internal/normalize"
)

// PageFetcher fetches a page snapshot
type PageFetcher interface {
	FetchWithRetry(ctx context.Context, rawURL string) (*model.Snapshot, error)
}

// Deps are the collaborators of a Pipeline. Nil fields get defaults.
type Deps struct {
	Fetcher PageFetcher      // defaults to a Fetcher built from the config
	Limiter RateLimiter      // only used by the default Fetcher
	Robots  RobotsPolicy     // only used by the default Fetcher
	Cache   cache.Cache      // nil disables caching
	Logger  *slog.Logger     // defaults to slog.Default()
	Now     func() time.Time // capture clock, defaults to time.Now
}

// Pipeline orchestrates one scan
type Pipeline struct {
	fetcher  PageFetcher
	cache    cache.Cache
	logger   *slog.Logger
	now      func() time.Time
	renderer *Renderer
	config   *model.Config
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	fetcher := deps.Fetcher
	if fetcher == nil {
		f := NewFetcher(cfg.HTTP, cfg.Source.Encoding)
		if deps.Limiter != nil {
			f.SetLimiter(deps.Limiter)
		}
		if deps.Robots != nil {
			f.SetRobots(deps.Robots)
		}
		f.now = now
		fetcher = f
	}

	return &Pipeline{
		fetcher:  fetcher,
		cache:    deps.Cache,
		logger:   logger,
		now:      now,
		renderer: NewRenderer(cfg.Output.Indent),
		config:   cfg,
	}
}

// Renderer returns the pipeline's JSON renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Scan fetches src and builds both published documents
func (p *Pipeline) Scan(ctx context.Context, src model.Source) (*model.Report, error) {
	snapshot, fromCache, err := p.snapshot(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	report, err := p.ScanHTML(snapshot.HTML, src)
	if err != nil {
		return nil, err
	}
	report.FetchMeta = snapshot.Meta
	report.FromCache = fromCache

	return report, nil
}

// ScanHTML builds both published documents from an already fetched page
func (p *Pipeline) ScanHTML(htmlContent string, src model.Source) (*model.Report, error) {
	capturedAt := p.captureTime()

	table, err := extract.ExtractTableString(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("extract table: %w", err)
	}
	p.logger.Debug("extracted table", "source", src.Name, "rows", len(table))

	records, err := normalize.Normalize(table, normalize.Options{BaseYear: p.config.Normalize.BaseYear})
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	series, err := aggregate.Daily(records, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	p.logger.Info("scanned source",
		"source", src.Name,
		"records", len(records),
		"days", len(series),
		"total", aggregate.Total(series))

	return &model.Report{
		Source:    src.Name,
		SourceURL: src.URL,
		FetchedAt: capturedAt,
		Patients:  model.PatientsDocument{LastUpdate: capturedAt, Data: records},
		Summary:   model.SummaryDocument{LastUpdate: capturedAt, Data: series},
	}, nil
}

// ScanFile builds both documents from a saved copy of the page
func (p *Pipeline) ScanFile(path string, src model.Source) (*model.Report, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	text, name, err := decodeBody(body, "", p.config.Source.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	p.logger.Debug("read saved page", "path", path, "charset", name)

	report, err := p.ScanHTML(text, src)
	if err != nil {
		return nil, err
	}
	report.FetchMeta.Charset = name
	return report, nil
}

// LastUpdated fetches rawURL and parses its "last updated" banner
func (p *Pipeline) LastUpdated(ctx context.Context, rawURL string) (time.Time, string, error) {
	snapshot, _, err := p.snapshot(ctx, rawURL)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("fetch: %w", err)
	}

	doc, err := extract.Parse(strings.NewReader(snapshot.HTML))
	if err != nil {
		return time.Time{}, "", err
	}

	marker := p.config.Source.BannerMarker
	text, ok := extract.FindBanner(doc, marker)
	if !ok {
		return time.Time{}, "", fmt.Errorf("no banner containing %q", marker)
	}

	date, err := extract.ParseBannerDate(text)
	if err != nil {
		return time.Time{}, text, err
	}
	return date, text, nil
}

// snapshot returns the page for rawURL from the cache or the network
func (p *Pipeline) snapshot(ctx context.Context, rawURL string) (*model.Snapshot, bool, error) {
	if p.cache != nil {
		if s, ok := p.cache.Get(rawURL); ok {
			p.logger.Debug("cache hit", "url", rawURL)
			return s, true, nil
		}
	}

	p.logger.Debug("fetching", "url", rawURL)
	s, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, false, err
	}

	if p.cache != nil {
		if err := p.cache.Put(s); err != nil {
			p.logger.Warn("cache write failed", "url", rawURL, "error", err)
		}
	}
	return s, false, nil
}

// captureTime is "now" in JST, to the second
func (p *Pipeline) captureTime() time.Time {
	return p.now().In(model.JST).Truncate(time.Second)
}

// SourceFromURL names a source after the last path segment of its URL
func SourceFromURL(rawURL string) model.Source {
	return model.Source{Name: extractSubject(rawURL), URL: rawURL}
}

// extractSubject extracts a short name from the URL
func extractSubject(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Host
	}

	segments := strings.Split(path, "/")
	last := segments[len(segments)-1]

	if idx := strings.LastIndex(last, "."); idx > 0 {
		last = last[:idx]
	}

	return last
}

package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"github.com/ppiankov/casefeed/internal/util"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = sleepContext

const baseBackoff = 500 * time.Millisecond

// RateLimiter paces requests per host
type RateLimiter interface {
	WaitWithDelay(ctx context.Context, rawURL string, additionalDelay time.Duration) error
}

// RobotsPolicy decides whether a URL may be fetched
type RobotsPolicy interface {
	CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error)
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// transportError marks failures below HTTP (DNS, connection reset, timeouts)
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "fetch: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// Fetcher retrieves source pages and decodes them to UTF-8
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	referer     string
	maxBytes    int64
	maxAttempts int
	encoding    string
	limiter     RateLimiter
	robots      RobotsPolicy
	now         func() time.Time
}

// NewFetcher creates a Fetcher from the HTTP configuration.
// encoding forces a page encoding; "" or "auto" detects it.
func NewFetcher(cfg model.HTTPConfig, encoding string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in flag
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:   cfg.UserAgent,
		referer:     cfg.Referer,
		maxBytes:    cfg.MaxBodyBytes,
		maxAttempts: maxAttempts,
		encoding:    encoding,
		now:         time.Now,
	}
}

// SetLimiter installs a per-host rate limiter
func (f *Fetcher) SetLimiter(l RateLimiter) {
	f.limiter = l
}

// SetRobots installs a robots.txt policy
func (f *Fetcher) SetRobots(r RobotsPolicy) {
	f.robots = r
}

// Fetch retrieves rawURL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Snapshot, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		crawlDelay = delay
	}

	if f.limiter != nil {
		if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.7,en;q=0.3")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}
	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	text, name, err := decodeBody(body, meta.ContentType, f.encoding)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	meta.Charset = name

	return &model.Snapshot{
		URL:       rawURL,
		HTML:      text,
		Meta:      meta,
		FetchedAt: f.now(),
	}, nil
}

// FetchWithRetry retries transport failures, 429 and 5xx with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*model.Snapshot, error) {
	var lastErr error
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := fetchSleepFunc(ctx, baseBackoff<<(attempt-1)); err != nil {
				return nil, err
			}
		}

		snapshot, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return snapshot, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", f.maxAttempts, lastErr)
}

// sleepContext waits for d or until ctx ends
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}

	var te *transportError
	return errors.As(err, &te)
}

// decodeBody converts body to UTF-8 and reports the charset used
func decodeBody(body []byte, contentType, forced string) (string, string, error) {
	var (
		enc  encoding.Encoding
		name string
	)

	switch strings.ToLower(strings.TrimSpace(forced)) {
	case "", "auto":
		enc, name, _ = charset.DetermineEncoding(body, contentType)
	case "utf-8", "utf8":
		enc, name = unicode.UTF8, "utf-8"
	case "shift_jis", "sjis", "cp932":
		enc, name = japanese.ShiftJIS, "shift_jis"
	case "euc-jp", "eucjp":
		enc, name = japanese.EUCJP, "euc-jp"
	default:
		return "", "", fmt.Errorf("unsupported encoding %q", forced)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", "", err
	}
	return string(decoded), name, nil
}

package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private/\nCrawl-delay: 2\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("casefeed/0.1", 5*time.Second)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/hf/kth/kak/hasseijoukyou.htm")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2*time.Second, delay)

	allowed, _, err = checker.CanFetch(ctx, server.URL+"/private/page.htm")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, int32(1), hits.Load(), "robots.txt should be fetched once per host")

	checker.Clear()
	_, _, _ = checker.CanFetch(ctx, server.URL+"/")
	assert.Equal(t, int32(2), hits.Load())
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("casefeed/0.1", 5*time.Second)
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "Mozilla", NormalizeUserAgent("Mozilla/5.0 (Windows NT 10.0)"))
	assert.Equal(t, "casefeed", NormalizeUserAgent("casefeed/0.1"))
	assert.Equal(t, "", NormalizeUserAgent(""))
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:8080", "http://secure-proxy:8443", "pref.hokkaido.lg.jp")

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy:8080", u.Host)

	req = httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "secure-proxy:8443", u.Host)

	req = httptest.NewRequest(http.MethodGet, "http://www.pref.hokkaido.lg.jp/", nil)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}

package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockScanner struct {
	failFor string
	delay   time.Duration
}

func (m *mockScanner) Scan(ctx context.Context, src model.Source) (*model.Report, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if src.Name == m.failFor {
		return nil, errors.New("scan error")
	}
	return &model.Report{Source: src.Name, SourceURL: src.URL}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sourceFromURL(u string) model.Source {
	return model.Source{Name: strings.TrimPrefix(u, "http://"), URL: u}
}

func TestBatchProcessor_InputOrder(t *testing.T) {
	processor := NewBatchProcessor(&mockScanner{failFor: "b"}, 2, quietLogger())

	sources := []model.Source{
		{Name: "a", URL: "http://a"},
		{Name: "b", URL: "http://b"},
		{Name: "c", URL: "http://c"},
		{Name: "d", URL: "http://d"},
	}
	results := processor.ProcessSources(context.Background(), sources)

	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, sources[i], r.Source)
		assert.Equal(t, i, r.Index)
	}
	assert.Error(t, results[1].Error)
	assert.Nil(t, results[1].Report)
	assert.NoError(t, results[2].Error)
	assert.Equal(t, "c", results[2].Report.Source)
}

func TestBatchProcessor_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockScanner{}, 2, nil).ProcessSources(context.Background(), nil)
	assert.Empty(t, results)
}

func TestBatchProcessor_Canceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	processor := NewBatchProcessor(&mockScanner{delay: time.Second}, 1, quietLogger())
	sources := []model.Source{{Name: "a", URL: "http://a"}, {Name: "b", URL: "http://b"}, {Name: "c", URL: "http://c"}}

	results := processor.ProcessSources(ctx, sources)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Error(t, r.Error)
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	content := `# prefectural pages
hokkaido http://www.pref.hokkaido.lg.jp/hf/kth/kak/hasseijoukyou.htm

http://example.com/cases.htm
http://example.com/cases.htm
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	sources, err := ReadSourcesFromFile(path, sourceFromURL)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "hokkaido", sources[0].Name)
	assert.Equal(t, "example.com/cases.htm", sources[1].Name)
}

func TestReadSourcesFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	require.NoError(t, os.WriteFile(path, []byte("a b c\n"), 0644))

	_, err := ReadSourcesFromFile(path, sourceFromURL)
	assert.Error(t, err)
}

func TestProcessFile_MissingFile(t *testing.T) {
	_, err := NewBatchProcessor(&mockScanner{}, 1, nil).ProcessFile(context.Background(), "/does/not/exist", sourceFromURL)
	assert.Error(t, err)
}

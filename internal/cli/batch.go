package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"github.com/ppiankov/casefeed/internal/pipeline"
	"github.com/ppiankov/casefeed/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency    int
	batchTimeout   time.Duration
	batchOutputDir string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scan several source pages in parallel",
	Long: `Batch reads sources from a file, one per line, either "<url>" or
"<name> <url>", and writes both feeds for each into <output-dir>/<name>/.
Requests to the same host are paced by the rate limiter.

Example:
  casefeed batch sources.txt
  casefeed batch sources.txt --concurrency 2 --output-dir ./feeds`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutputDir, "output-dir", "feeds", "output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 10*time.Minute, "total timeout for the batch")
	addFetchFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := commandConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	logger := newLogger(verbose)
	p := newPipeline(cfg, logger)
	processor := worker.NewBatchProcessor(&timedScanner{p: p, timeout: timeout}, cfg.Concurrency.Workers, logger)

	fmt.Fprintf(os.Stderr, "⚙️  Scanning sources from %s with %d workers...\n", file, cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file, pipeline.SourceFromURL)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source.Name, result.Error)
			continue
		}

		dir := filepath.Join(batchOutputDir, sanitizeFilename(result.Source.Name))
		if err := p.Renderer().RenderReport(dir, result.Report); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source.Name, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d cases)\n", result.Source.Name, len(result.Report.Patients.Data))
	}

	fmt.Fprintf(os.Stderr, "\n  Total: %d  Success: %d  Failures: %d  Output: %s\n",
		len(results), successCount, len(results)-successCount, batchOutputDir)

	if successCount < len(results) {
		return fmt.Errorf("%d of %d sources failed", len(results)-successCount, len(results))
	}
	return nil
}

// timedScanner bounds each scan of a batch by its own timeout
type timedScanner struct {
	p       *pipeline.Pipeline
	timeout time.Duration
}

func (s *timedScanner) Scan(ctx context.Context, src model.Source) (*model.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.p.Scan(ctx, src)
}

// sanitizeFilename makes a source name safe to use as a directory name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	if s == "" || s == "." || s == ".." {
		s = "source"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

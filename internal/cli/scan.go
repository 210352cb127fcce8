package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/casefeed/internal/model"
	"github.com/ppiankov/casefeed/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	inputFile string
	outPath   string
	outputDir string
	timeout   time.Duration
	noCache   bool
	noRobots  bool
)

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "Print the normalized case list",
	Long: `Fetch the case table and print one JSON record per case.

Example:
  casefeed patients
  casefeed patients --out data/patients.json
  casefeed patients --file saved-page.htm --encoding shift_jis`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, p, err := runScan(cmd)
		if err != nil {
			return err
		}
		return p.Renderer().RenderJSON(report.Patients, outPath)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print cases per day from the first case through today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, p, err := runScan(cmd)
		if err != nil {
			return err
		}
		return p.Renderer().RenderJSON(report.Summary, outPath)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Write both feeds into a directory",
	Long: `Scan writes patients.json and patients_summary.json into --output-dir.

Example:
  casefeed scan --output-dir ./data
  casefeed scan --url https://example.org/cases.htm --no-cache`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, p, err := runScan(cmd)
		if err != nil {
			return err
		}
		if err := p.Renderer().RenderReport(outputDir, report); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✓ %d cases over %d days (last update %s)\n",
			len(report.Patients.Data), len(report.Summary.Data), report.FetchedAt.Format(time.RFC3339))
		fmt.Fprintf(os.Stderr, "✓ Wrote %s/%s and %s/%s\n",
			outputDir, pipeline.PatientsFile, outputDir, pipeline.SummaryFile)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{patientsCmd, summaryCmd, scanCmd} {
		addFetchFlags(cmd)
		cmd.Flags().StringVar(&inputFile, "file", "", "read a saved copy of the page instead of fetching")
		rootCmd.AddCommand(cmd)
	}

	patientsCmd.Flags().StringVar(&outPath, "out", "-", "output path (- for stdout)")
	summaryCmd.Flags().StringVar(&outPath, "out", "-", "output path (- for stdout)")
	scanCmd.Flags().StringVar(&outputDir, "output-dir", "data", "directory for the JSON feeds")
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetch)")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "do not consult robots.txt")
}

// commandConfig loads config and applies the fetch flags
func commandConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command) (*model.Report, *pipeline.Pipeline, error) {
	cfg, err := commandConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(verbose)
	p := newPipeline(cfg, logger)
	src := pipeline.SourceFromURL(cfg.Source.URL)

	if inputFile != "" {
		logger.Info("reading saved page", "path", inputFile)
		report, err := p.ScanFile(inputFile, src)
		if err != nil {
			return nil, nil, fmt.Errorf("scan failed: %w", err)
		}
		return report, p, nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	logger.Info("scanning", "url", src.URL, "timeout", timeout, "cache", cfg.Cache.Enabled)
	report, err := p.Scan(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("scan failed: %w", err)
	}
	return report, p, nil
}

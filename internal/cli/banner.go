package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/casefeed/internal/extract"
	"github.com/spf13/cobra"
)

var fromPage bool

var bannerCmd = &cobra.Command{
	Use:   "banner [text]",
	Short: "Parse a \"last updated\" banner into an ISO-8601 date",
	Long: `Banner extracts year, month and day from a banner such as
"最終更新日：2020年3月05日（木）" and prints the date at midnight JST.

The text is taken from the arguments, from stdin when no argument is given,
or from the source page itself with --from-page.

Example:
  casefeed banner "最終更新日：2020年3月05日（木）"
  casefeed banner --from-page`,
	RunE: runBanner,
}

func init() {
	rootCmd.AddCommand(bannerCmd)
	bannerCmd.Flags().BoolVar(&fromPage, "from-page", false, "read the banner from the source page")
	addFetchFlags(bannerCmd)
}

func runBanner(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if fromPage {
		cfg, err := commandConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		p := newPipeline(cfg, newLogger(verbose))
		date, text, err := p.LastUpdated(ctx, cfg.Source.URL)
		if err != nil {
			return fmt.Errorf("banner: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Banner: %s\n", text)
		}
		fmt.Fprintln(out, date.Format(time.RFC3339))
		return nil
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	date, err := extract.ParseBannerDate(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, date.Format(time.RFC3339))
	return nil
}

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ppiankov/casefeed/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const version = "casefeed v0.3.1"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "casefeed",
	Short: "casefeed - normalize published case tables into JSON feeds",
	Long: `casefeed reads the daily case table published by a prefectural health
department and produces two JSON feeds:

  patients.json          one record per case, ISO-8601 dates, stable keys
  patients_summary.json  cases per day from the first case through today

The table uses Japanese headers, full-width digits and MM/DD dates without
a year; casefeed infers the year from the order of the rows.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.casefeed/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("url", model.DefaultSourceURL, "URL of the page holding the case table")
	rootCmd.PersistentFlags().String("encoding", "auto", "page encoding (auto, utf-8, shift_jis, euc-jp)")
	rootCmd.PersistentFlags().Int("base-year", 2020, "year of the first release date in the table")
	rootCmd.PersistentFlags().String("ua", "", "HTTP User-Agent (default: browser-like identity)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("source.url", rootCmd.PersistentFlags().Lookup("url"))
	_ = viper.BindPFlag("source.encoding", rootCmd.PersistentFlags().Lookup("encoding"))
	_ = viper.BindPFlag("normalize.base_year", rootCmd.PersistentFlags().Lookup("base-year"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".casefeed"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// CASEFEED_HTTP_TIMEOUT overrides http.timeout, and so on
	viper.SetEnvPrefix("CASEFEED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg so env vars and Unmarshal see them
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for key, val := range node {
			if child, ok := val.(map[string]any); ok {
				walk(prefix+key+".", child)
				continue
			}
			v.SetDefault(prefix+key, val)
		}
	}
	walk("", tree)
	return nil
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if ua := rootCmd.PersistentFlags().Lookup("ua"); ua != nil && ua.Changed {
		cfg.HTTP.UserAgent = ua.Value.String()
	}
	return cfg, nil
}

// newLogger builds the structured logger for diagnostics on stderr
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

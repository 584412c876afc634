package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type runFunc func(ctx context.Context, cfg Config, logger *zap.Logger) error

type options struct {
	configPath string
	verbose    bool

	cejst    string
	key      string
	url      string
	year     int
	output   string
	workbook string
	summary  string
	workers  int
	timeout  time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand(Run).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(run runFunc) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cejst-demographics",
		Short: "Chart CEJST disadvantaged tracts by non-white population share",
		Long: `cejst-demographics joins the Climate and Economic Justice Screening Tool
tract list with ACS 2019 race counts from the Census API, bins tracts by
the share of their population that is non-white and charts how many tracts
in each bin are identified as disadvantaged.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}

			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return run(cmd.Context(), cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML config file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.cejst, "cejst", DefaultCEJSTPath, "CEJST communities CSV")
	flags.StringVar(&opts.key, "census-key", "", "Census API key (or set CENSUS_API_KEY)")
	flags.StringVar(&opts.url, "census-url", DefaultCensusURL, "Census Data API base URL")
	flags.IntVar(&opts.year, "year", DefaultCensusYear, "ACS 5-year vintage")
	flags.StringVarP(&opts.output, "output", "o", DefaultChartPath, "Chart image (.jpg or .png)")
	flags.StringVar(&opts.workbook, "workbook", "", "Also write bin statistics to this .xlsx file")
	flags.StringVar(&opts.summary, "summary", "", "Also write a markdown summary to this file")
	flags.IntVar(&opts.workers, "workers", 1, "Concurrent Census API requests")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-request timeout (0 waits forever)")

	return cmd
}

// config layers the config file, then explicitly set flags, then the
// environment for a still-missing API key.
func (o *options) config(cmd *cobra.Command) (Config, error) {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("cejst") {
		cfg.CEJSTPath = o.cejst
	}
	if flags.Changed("census-key") {
		cfg.Census.Key = o.key
	}
	if flags.Changed("census-url") {
		cfg.Census.BaseURL = o.url
	}
	if flags.Changed("year") {
		cfg.Census.Year = o.year
	}
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("workbook") {
		cfg.Workbook = o.workbook
	}
	if flags.Changed("summary") {
		cfg.Summary = o.summary
	}
	if flags.Changed("workers") {
		cfg.Census.Workers = o.workers
	}
	if flags.Changed("timeout") {
		cfg.Census.Timeout = o.timeout
	}
	if cfg.Census.Key == "" {
		cfg.Census.Key = os.Getenv("CENSUS_API_KEY")
	}
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

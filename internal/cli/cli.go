package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/kennzeichen/internal/config"
	"github.com/pfrederiksen/kennzeichen/internal/logger"
	"github.com/pfrederiksen/kennzeichen/internal/record"
	"github.com/pfrederiksen/kennzeichen/internal/scraper"
	"github.com/pfrederiksen/kennzeichen/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is set at build time via ldflags
var Version = "dev"

type options struct {
	configPath string
	url        string
	dataDir    string
	format     string
	logFile    string
	summary    bool
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "kennzeichen",
		Short: "Scrape the German vehicle registration code list",
		Long: `A CLI tool that downloads the list of German vehicle registration codes,
fixes known irregularities of the source table and writes the result to data/raw.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runScrape(cmd, cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", config.DefaultDataDir, "Directory of the raw data file")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Summary format: text or json")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Also write logs to rotated files (strftime pattern)")
	cmd.Flags().StringVar(&opts.url, "url", config.DefaultURL, "Page to read the code list from")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "Print a per-state summary after writing")

	cmd.AddCommand(newShowCmd(opts))

	return cmd
}

// newShowCmd prints the summary of an existing raw data file
func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the existing raw data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			closeLog, err := setupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			store := storage.New(cfg.Output.Dir, cfg.Output.File)
			records, err := store.LoadRecords()
			if err != nil {
				return fmt.Errorf("loading records: %w", err)
			}

			logger.Debug("Loaded raw data", logger.Fields{"path": store.Path(), "records": len(records)})

			return WriteOutput(cmd.OutOrStdout(), &OutputResult{
				Path:    store.Path(),
				Summary: record.Summarize(records),
			}, OutputFormat(cfg.Output.SummaryFormat))
		},
	}
}

// load builds the effective config: defaults, then the config file, then explicitly set flags
func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Source.URL = o.url
	}
	if flags.Changed("data-dir") {
		cfg.Output.Dir = o.dataDir
	}
	if flags.Changed("summary") {
		cfg.Output.Summary = o.summary
	}
	if flags.Changed("format") {
		cfg.Output.SummaryFormat = strings.ToLower(o.format)
	}
	if flags.Changed("log-file") {
		cfg.Logging.File = o.logFile
	}
	if o.verbose {
		cfg.Logging.Level = string(logger.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupLogger installs the default logger for the run and returns its cleanup
func setupLogger(cfg *config.Config, w io.Writer) (func(), error) {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	lg := logger.New(level, w)
	lg.SetFormat(cfg.Logging.Format)
	if cfg.Logging.File != "" {
		if err := lg.AddFileOutput(cfg.Logging.File); err != nil {
			return nil, err
		}
	}

	previous := logger.Default()
	logger.SetDefault(lg)

	return func() {
		lg.Close()
		logger.SetDefault(previous)
	}, nil
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, cfg *config.Config) error {
	closeLog, err := setupLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Debug("Starting run", logger.Fields{"config": cfg.String()})

	store, records, err := Run(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		logger.Error("Run failed", nil, err)
		return err
	}

	if !cfg.Output.Summary {
		return nil
	}

	if err := WriteOutput(cmd.OutOrStdout(), &OutputResult{
		Path:    store.Path(),
		Summary: record.Summarize(records),
	}, OutputFormat(cfg.Output.SummaryFormat)); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// Run fetches, normalizes and writes the code list once, reporting progress to w.
// It stops at the first failure; nothing is written unless the page parsed.
func Run(ctx context.Context, cfg *config.Config, w io.Writer) (*storage.Storage, []*record.Record, error) {
	fmt.Fprintln(w, "Loading registration codes …")

	sc := scraper.New(cfg.Source.URL, cfg.Source.UserAgent)
	logger.Info("Fetching code list", logger.Fields{"url": sc.URL()})

	start := time.Now()
	records, err := sc.FetchRecords(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching code list: %w", err)
	}
	logger.RecordTiming("scrape", time.Since(start))
	logger.AddCounter("records.total", int64(len(records)))

	for _, r := range records {
		for _, rule := range record.Normalize(r) {
			logger.IncrCounter("rules." + rule)
			logger.Debug("Fix-up rule applied", logger.Fields{"rule": rule, "record": r.String()})
		}
		if r.IsSpecial() {
			logger.IncrCounter("records.special")
		}
	}

	fmt.Fprintln(w, "Writing raw data …")

	store := storage.New(cfg.Output.Dir, cfg.Output.File)
	start = time.Now()
	if err := store.WriteRecords(records); err != nil {
		return nil, nil, fmt.Errorf("writing raw data: %w", err)
	}
	logger.RecordTiming("write", time.Since(start))

	fmt.Fprintf(w, "✔ %d registration codes loaded\n", len(records))
	logger.Info("Raw data written", logger.Fields{"path": store.Path(), "records": len(records)})
	logger.Debug("Run metrics", logger.GetMetricsSnapshot())

	return store, records, nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/namefreezers/weather-etl/internal/config"
	"github.com/namefreezers/weather-etl/internal/etl"
	"github.com/namefreezers/weather-etl/internal/loader"
	"github.com/namefreezers/weather-etl/internal/repository"
	"github.com/namefreezers/weather-etl/internal/weather"
)

type options struct {
	configPath  string
	format      string
	cities      string
	outputDir   string
	concurrency int
	preview     int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "weather-etl",
		Short: "Fetch current weather for a list of cities and store it as parquet or csv",
		Long: `weather-etl fetches current weather for each configured city from
OpenWeatherMap, flattens the responses into one table and writes it to
weather_analytics_data.parquet (or .csv). Cities that fail to fetch are
logged and skipped. Configuration comes from the environment (WEATHER_API_KEY,
WEATHER_CITIES, OUTPUT_FORMAT, ...), an optional .env file, an optional YAML
file and the flags below, in increasing precedence.

When REDIS_ADDR is set, raw API responses are cached for CACHE_TTL. A rerun
inside that window reuses the cached response for a city instead of
requesting it again, so the output may repeat the previous run's readings.
Leave REDIS_ADDR empty to always request every city.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	f.StringVar(&opts.format, "format", config.DefaultFormat, "output format: parquet or csv")
	f.StringVar(&opts.cities, "cities", "", "comma-separated city list (overrides WEATHER_CITIES)")
	f.StringVar(&opts.outputDir, "output-dir", config.DefaultOutputDir, "directory for the output file")
	f.IntVar(&opts.concurrency, "concurrency", 1, "maximum concurrent API requests")
	f.IntVar(&opts.preview, "preview", config.DefaultPreviewRows, "rows to print after loading")
	return cmd
}

// loadConfig applies explicitly set flags on top of config.Load.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Format = opts.format
	}
	if f.Changed("cities") {
		cfg.Cities = config.SplitCities(opts.cities)
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = opts.concurrency
	}
	if f.Changed("preview") {
		cfg.PreviewRows = opts.preview
	}
	return cfg, cfg.Validate()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	// 1) Initialize structured logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("cannot initialize logger: %w", err)
	}
	defer logger.Sync()

	// 2) Build the weather fetcher (with optional Redis cache)
	fetcher, closeFetcher := weather.BuildFetcher(ctx, cfg, logger)
	defer closeFetcher()

	// 3) Wire up the pipeline
	extractor := etl.NewExtractor(fetcher, logger)
	extractor.Concurrency = cfg.Concurrency
	p := etl.NewPipeline(extractor, etl.NewTransformer(logger), loader.New(logger), logger)
	p.Cities = cfg.Cities
	p.Format = cfg.Format
	p.OutputDir = cfg.OutputDir

	// 4) Optional Postgres sink
	if cfg.DatabaseURL != "" {
		db, err := repository.OpenDB(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database, postgres sink disabled", zap.Error(err))
		} else {
			defer db.Close()
			p.Sinks = append(p.Sinks, repository.Sink{Repo: repository.NewObservationRepository(db, logger)})
		}
	}

	// 5) Run
	logger.Info("starting weather ETL",
		zap.Strings("cities", cfg.Cities),
		zap.String("format", cfg.Format),
		zap.String("output_dir", cfg.OutputDir),
	)
	rep, err := p.Run(ctx)
	if err != nil {
		return err
	}

	if rep.Table != nil && cfg.PreviewRows > 0 {
		rep.Table.Preview(stdout, cfg.PreviewRows)
	}
	return nil
}

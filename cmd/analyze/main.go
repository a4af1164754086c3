package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tradeproof/internal/archive"
	"tradeproof/internal/batch"
	"tradeproof/internal/config"
	"tradeproof/internal/domain"
	"tradeproof/internal/extract"
	"tradeproof/internal/match"
	"tradeproof/internal/ocr"
	"tradeproof/internal/ocr/stub"
	"tradeproof/internal/reporting"
	"tradeproof/internal/storage/clickhouse"
	"tradeproof/internal/storage/memory"
	"tradeproof/internal/storage/migrations"
	pgstore "tradeproof/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (defaults apply when empty)")
	signalDir := flag.String("signal-dir", "", "Directory with signal screenshots")
	resultDir := flag.String("result-dir", "", "Directory with result screenshots")
	outputDir := flag.String("output-dir", "", "Report output directory (overrides config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	if *signalDir == "" && *resultDir == "" {
		fmt.Fprintln(os.Stderr, "Error: at least one of --signal-dir or --result-dir is required")
		os.Exit(1)
	}

	logger, err := newLogger(cfg.App.LogLevel, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	extractor, err := newExtractor(cfg)
	if err != nil {
		logger.Error("load coin file failed", zap.Error(err))
		os.Exit(1)
	}

	factory, err := engineFactory(cfg.OCR.Engine)
	if err != nil {
		logger.Error("configure OCR engine failed", zap.Error(err))
		os.Exit(1)
	}

	// Cancel the batch on SIGINT/SIGTERM; a partial report is still written.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch := batch.New(batch.Options{
		SignalDir:     *signalDir,
		ResultDir:     *resultDir,
		EngineFactory: factory,
		Extractor:     extractor,
		OCR:           cfg.OCR,
		Batch:         cfg.Batch,
		Logger:        logger,
	})

	run, err := orch.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("batch run failed", zap.Error(err))
		os.Exit(1)
	}
	if errors.Is(err, context.Canceled) {
		logger.Warn("batch interrupted, reporting partial results")
	}

	matched := match.New(cfg.Match.AutoMatchThreshold).Match(run.Signals, run.Results)

	report := reporting.NewGenerator().Generate(run, &matched)
	if err := reporting.WriteBundle(report, cfg.Output.Dir); err != nil {
		logger.Error("write report bundle failed", zap.Error(err))
		os.Exit(1)
	}

	if cfg.Archive.Enabled {
		// Archive failures are logged, never fatal: the report on disk
		// is the primary output.
		archiveCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		runArchive(archiveCtx, logger, cfg, run, &matched)
	}

	logger.Info("analysis complete",
		zap.Int("processed", run.Processed),
		zap.Int("succeeded", run.Succeeded),
		zap.Int("skipped", run.Skipped),
		zap.Int("failed", run.Failed),
		zap.Int("matched_trades", len(matched.Trades)),
		zap.Int("unmatched_signals", len(matched.UnmatchedSignals)),
		zap.Int("unmatched_results", len(matched.UnmatchedResults)),
		zap.String("output_dir", cfg.Output.Dir),
	)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if verbose {
		zapLevel = zapcore.DebugLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return zapCfg.Build()
}

func newExtractor(cfg *config.Config) (*extract.Extractor, error) {
	if cfg.OCR.KnownCoinsFile == "" {
		return extract.New(), nil
	}
	coins, err := extract.LoadCoinFile(cfg.OCR.KnownCoinsFile)
	if err != nil {
		return nil, err
	}
	return extract.NewWithCoins(coins), nil
}

func engineFactory(engine string) (ocr.EngineFactory, error) {
	switch engine {
	case "tesseract":
		return func() (ocr.Engine, error) {
			return ocr.NewTesseractEngine()
		}, nil
	case "stub":
		// Dry-run engine: exercises the pipeline without recognition.
		return func() (ocr.Engine, error) {
			return stub.Fixed("", 0), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", engine)
	}
}

// runArchive pushes records into the configured sinks. The record
// archive always runs: over Postgres when a DSN is set, over the
// in-memory stores otherwise.
func runArchive(ctx context.Context, logger *zap.Logger, cfg *config.Config, run *batch.RunResult, matched *match.Result) {
	runID := fmt.Sprintf("run-%s", time.Now().UTC().Format("20060102T150405Z"))

	backend := "memory"
	if cfg.Archive.PostgresDSN != "" {
		backend = "postgres"
	}
	if err := archiveRecords(ctx, cfg.Archive.PostgresDSN, run, matched); err != nil {
		logger.Error("record archive failed", zap.Error(err), zap.String("backend", backend))
	} else {
		logger.Info("archived records", zap.String("backend", backend))
	}

	if cfg.Archive.ClickHouseDSN != "" {
		if err := archiveClickhouse(ctx, cfg.Archive.ClickHouseDSN, runID, run.Outcomes); err != nil {
			logger.Error("clickhouse telemetry failed", zap.Error(err))
		} else {
			logger.Info("archived extraction telemetry to clickhouse", zap.String("run_id", runID))
		}
	}
}

func archiveRecords(ctx context.Context, dsn string, run *batch.RunResult, matched *match.Result) error {
	if dsn == "" {
		sink := archive.NewSink(memory.NewCandidateRecordStore(), memory.NewTradeRecordStore())
		return sink.Store(ctx, run, matched)
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	sink := archive.NewSink(pgstore.NewCandidateRecordStore(pool), pgstore.NewTradeRecordStore(pool))
	return sink.Store(ctx, run, matched)
}

func archiveClickhouse(ctx context.Context, dsn, runID string, outcomes []domain.ImageOutcome) error {
	conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	defer conn.Close()

	return clickhouse.NewExtractionLogStore(conn).InsertBatch(ctx, runID, time.Now().UTC(), outcomes)
}

// Package batch runs the screenshot pipeline over whole directories.
// It coordinates: enumeration → recognition → record building → dedupe,
// with a fixed worker pool and per-image error isolation.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tradeproof/internal/config"
	"tradeproof/internal/domain"
	"tradeproof/internal/extract"
	"tradeproof/internal/ocr"
	"tradeproof/internal/record"
)

// Orchestrator coordinates batch execution over a signal directory and a
// result directory.
type Orchestrator struct {
	signalDir string
	resultDir string

	factory   ocr.EngineFactory
	extractor *extract.Extractor
	ocrCfg    config.OCRConfig
	batchCfg  config.BatchConfig

	logger *zap.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// SignalDir and ResultDir hold the screenshots to process. Either
	// may be empty to process only one side.
	SignalDir string
	ResultDir string

	// EngineFactory creates one OCR engine per worker.
	EngineFactory ocr.EngineFactory

	// Extractor defaults to the built-in coin list when nil.
	Extractor *extract.Extractor

	OCR   config.OCRConfig
	Batch config.BatchConfig

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Extractor == nil {
		opts.Extractor = extract.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Orchestrator{
		signalDir: opts.SignalDir,
		resultDir: opts.ResultDir,
		factory:   opts.EngineFactory,
		extractor: opts.Extractor,
		ocrCfg:    opts.OCR,
		batchCfg:  opts.Batch,
		logger:    opts.Logger,
	}
}

// RunResult contains everything one batch run produced. Outcomes follow
// enumeration order regardless of worker completion order.
type RunResult struct {
	// Signals and Results hold the matchable records by kind.
	Signals []domain.CandidateRecord
	Results []domain.CandidateRecord

	// LowConfidence holds records below the confidence threshold. They
	// are excluded from matching but retained for review.
	LowConfidence []domain.CandidateRecord

	// Outcomes has one entry per enumerated image.
	Outcomes []domain.ImageOutcome

	Processed int
	Succeeded int
	Skipped   int
	Failed    int

	Errors []string
}

// entry is one enumerated image awaiting processing.
type entry struct {
	path string
	kind domain.RecordKind
}

// Run executes the batch: enumerate both directories, recognize every
// supported image through the worker pool, drop duplicates and partition
// the surviving records. A single bad image never aborts the run; only an
// unusable engine or context cancellation does. On cancellation the
// partial result is returned alongside the context error.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	entries, err := o.enumerate()
	if err != nil {
		return nil, err
	}
	o.logger.Info("batch enumerated",
		zap.Int("images", len(entries)),
		zap.String("signal_dir", o.signalDir),
		zap.String("result_dir", o.resultDir))

	outcomes := make([]domain.ImageOutcome, len(entries))
	builtRecs := make([]*domain.CandidateRecord, len(entries))

	jobs := o.selectJobs(entries, outcomes)

	if len(jobs) > 0 {
		if err := o.process(ctx, entries, jobs, outcomes, builtRecs); err != nil {
			return nil, err
		}
	}

	o.markCancelled(ctx, outcomes)
	o.dedupe(outcomes, builtRecs)
	o.collect(result, outcomes, builtRecs)

	o.logger.Info("batch finished",
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, ctx.Err()
}

// enumerate lists both directories in name order. Unsupported extensions
// are recorded as skipped without entering the worker pool.
func (o *Orchestrator) enumerate() ([]entry, error) {
	var entries []entry

	for _, dir := range []struct {
		path string
		kind domain.RecordKind
	}{
		{o.signalDir, domain.KindSignal},
		{o.resultDir, domain.KindResult},
	} {
		if dir.path == "" {
			continue
		}
		listed, err := os.ReadDir(dir.path)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", dir.path, err)
		}
		for _, item := range listed {
			if item.IsDir() {
				continue
			}
			entries = append(entries, entry{
				path: filepath.Join(dir.path, item.Name()),
				kind: dir.kind,
			})
		}
	}

	return entries, nil
}

// selectJobs fills in skip outcomes for unsupported and over-limit images
// and returns the indexes that will actually be processed.
func (o *Orchestrator) selectJobs(entries []entry, outcomes []domain.ImageOutcome) []int {
	var jobs []int
	for i, e := range entries {
		outcomes[i].ImagePath = e.path
		outcomes[i].Kind = e.kind

		if !o.batchCfg.SupportsExtension(filepath.Ext(e.path)) {
			outcomes[i].Status = domain.OutcomeSkipped
			outcomes[i].Reason = domain.SkipReasonUnsupported
			continue
		}
		if o.batchCfg.BatchSize > 0 && len(jobs) >= o.batchCfg.BatchSize {
			outcomes[i].Status = domain.OutcomeSkipped
			outcomes[i].Reason = domain.SkipReasonBatchLimit
			continue
		}
		jobs = append(jobs, i)
	}
	return jobs
}

// process runs the worker pool. Each worker owns one engine and one
// builder; workers write into their own outcome slots so no locking is
// needed.
func (o *Orchestrator) process(ctx context.Context, entries []entry, jobs []int, outcomes []domain.ImageOutcome, builtRecs []*domain.CandidateRecord) error {
	workers := o.batchCfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	engines := make([]ocr.Engine, 0, workers)
	defer func() {
		for _, e := range engines {
			e.Close()
		}
	}()
	for i := 0; i < workers; i++ {
		engine, err := o.factory()
		if err != nil {
			return fmt.Errorf("create ocr engine: %w", err)
		}
		engines = append(engines, engine)
	}

	jobCh := make(chan int)
	done := make(chan struct{})

	for w := 0; w < workers; w++ {
		go func(engine ocr.Engine) {
			defer func() { done <- struct{}{} }()

			builder := record.NewBuilder(
				ocr.NewReader(engine, o.ocrCfg),
				o.extractor,
				o.ocrCfg.ConfidenceThreshold,
			)
			for idx := range jobCh {
				o.processOne(ctx, builder, entries[idx], &outcomes[idx], &builtRecs[idx])
			}
		}(engines[w])
	}

	for _, idx := range jobs {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	for w := 0; w < workers; w++ {
		<-done
	}
	return nil
}

// processOne builds one record and classifies the outcome.
func (o *Orchestrator) processOne(ctx context.Context, builder *record.Builder, e entry, outcome *domain.ImageOutcome, slot **domain.CandidateRecord) {
	start := time.Now()
	built, err := builder.Build(ctx, e.path, e.kind)
	outcome.DurationMs = time.Since(start).Milliseconds()

	if err == nil {
		outcome.Status = domain.OutcomeSuccess
		outcome.RecordID = built.Record.RecordID
		outcome.Attempts = built.Attempts
		*slot = &built.Record
		return
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome.Status = domain.OutcomeSkipped
		outcome.Reason = domain.SkipReasonCancelled

	case errors.Is(err, ocr.ErrDecode), errors.Is(err, ocr.ErrSizeExceeded):
		if o.batchCfg.SkipCorrupted {
			outcome.Status = domain.OutcomeSkipped
			outcome.Reason = domain.SkipReasonCorrupted
		} else {
			outcome.Status = domain.OutcomeFailed
			outcome.Reason = err.Error()
		}
		o.logger.Warn("unreadable image",
			zap.String("path", e.path), zap.Error(err))

	default:
		outcome.Status = domain.OutcomeFailed
		outcome.Reason = err.Error()
		o.logger.Warn("image processing failed",
			zap.String("path", e.path), zap.Error(err))
	}
}

// markCancelled labels entries the pool never reached after a
// cancellation.
func (o *Orchestrator) markCancelled(ctx context.Context, outcomes []domain.ImageOutcome) {
	if ctx.Err() == nil {
		return
	}
	for i := range outcomes {
		if outcomes[i].Status == "" {
			outcomes[i].Status = domain.OutcomeSkipped
			outcomes[i].Reason = domain.SkipReasonCancelled
		}
	}
}

// dedupe drops records whose image content was already seen, in
// enumeration order: the first occurrence survives, later ones are
// skipped. The key includes the kind so the same image may legitimately
// appear once per directory.
func (o *Orchestrator) dedupe(outcomes []domain.ImageOutcome, builtRecs []*domain.CandidateRecord) {
	seen := make(map[string]bool)
	for i, rec := range builtRecs {
		if rec == nil {
			continue
		}
		key := string(rec.Kind) + "|" + rec.ImageHash
		if seen[key] {
			outcomes[i].Status = domain.OutcomeSkipped
			outcomes[i].Reason = domain.SkipReasonDuplicate
			outcomes[i].RecordID = ""
			builtRecs[i] = nil
			o.logger.Info("duplicate image skipped",
				zap.String("path", outcomes[i].ImagePath))
			continue
		}
		seen[key] = true
	}
}

// collect partitions surviving records and fills the counters.
func (o *Orchestrator) collect(result *RunResult, outcomes []domain.ImageOutcome, builtRecs []*domain.CandidateRecord) {
	result.Outcomes = outcomes
	result.Processed = len(outcomes)

	for i := range outcomes {
		switch outcomes[i].Status {
		case domain.OutcomeSuccess:
			result.Succeeded++
		case domain.OutcomeSkipped:
			result.Skipped++
		case domain.OutcomeFailed:
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %s", outcomes[i].ImagePath, outcomes[i].Reason))
		}
	}

	for _, rec := range builtRecs {
		if rec == nil {
			continue
		}
		switch {
		case rec.LowConfidence:
			result.LowConfidence = append(result.LowConfidence, *rec)
		case rec.Kind == domain.KindSignal:
			result.Signals = append(result.Signals, *rec)
		default:
			result.Results = append(result.Results, *rec)
		}
	}
}

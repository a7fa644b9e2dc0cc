package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"statspub/internal/analytics/engine"
	"statspub/internal/fileutil"
	"statspub/internal/logging"
	"statspub/internal/report"
	"statspub/internal/services"
)

// Workflow runs the claim, ingest, report, cleanup lifecycle for a processor.
// Concurrent runs for different processors are independent; runs for the same
// processor must be serialized by the caller.
type Workflow struct {
	logger           *slog.Logger
	claimConcurrency int
}

// NewWorkflow constructs a workflow engine. claimConcurrency bounds the
// parallel file moves used while claiming a source batch.
func NewWorkflow(logger *slog.Logger, claimConcurrency int) *Workflow {
	if claimConcurrency <= 0 {
		claimConcurrency = 1
	}
	return &Workflow{
		logger:           logging.NewComponentLogger(logger, "analytics"),
		claimConcurrency: claimConcurrency,
	}
}

// Process executes one workflow run for the processor.
func (w *Workflow) Process(ctx context.Context, proc Processor) error {
	ctx = services.WithProcessor(ctx, proc.Name())
	logger := logging.WithContext(ctx, w.logger)
	dirs := proc.Directories()

	sourceFiles, err := fileutil.ListFiles(dirs.Source)
	if err != nil {
		return fmt.Errorf("enumerate source directory: %w", err)
	}
	leftovers, err := fileutil.DirHasFiles(dirs.Processing)
	if err != nil {
		return fmt.Errorf("check processing directory: %w", err)
	}
	if len(sourceFiles) == 0 && !leftovers {
		logger.Info("no files to process",
			logging.String("source_dir", dirs.Source),
			logging.String(logging.FieldEventType, "analytics_noop"),
		)
		return nil
	}

	if err := fileutil.EnsureDir(dirs.Processing); err != nil {
		return err
	}
	if err := fileutil.EnsureDir(dirs.Reports); err != nil {
		return err
	}

	w.claimBatch(ctx, logger, dirs, sourceFiles)

	// Re-enumerate rather than trusting the claimed list: this picks up files
	// left behind by a crashed prior run.
	batch, err := fileutil.ListFilePaths(dirs.Processing)
	if err != nil {
		return fmt.Errorf("enumerate processing directory: %w", err)
	}

	eng, err := engine.Open()
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := proc.InitialiseSchema(ctx, eng); err != nil {
		return err
	}

	processed := 0
	quarantined := 0
	for _, path := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := proc.ProcessSourceFile(ctx, path, eng); err != nil {
			w.quarantine(logger, dirs, path, err)
			quarantined++
			continue
		}
		processed++
	}

	pathPrefix := filepath.Join(dirs.Reports, report.Prefix(time.Now()))
	if err := proc.CreateAggregateReports(ctx, pathPrefix, eng); err != nil {
		return fmt.Errorf("create aggregate reports: %w", err)
	}

	if err := os.RemoveAll(dirs.Processing); err != nil {
		return fmt.Errorf("remove processing directory: %w", err)
	}

	logger.Info("analytics run complete",
		logging.Int("processed", processed),
		logging.Int("quarantined", quarantined),
		logging.String("report_prefix", pathPrefix),
		logging.String(logging.FieldEventType, "analytics_complete"),
	)
	return nil
}

// claimBatch moves the snapshot of source files into the processing directory
// with bounded parallelism. A failed move leaves the file in the source
// directory for the next run.
func (w *Workflow) claimBatch(ctx context.Context, logger *slog.Logger, dirs Directories, names []string) {
	sem := make(chan struct{}, w.claimConcurrency)
	var wg sync.WaitGroup
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()
			src := filepath.Join(dirs.Source, name)
			dst := filepath.Join(dirs.Processing, name)
			if err := fileutil.MoveFile(src, dst); err != nil {
				logger.Warn("failed to claim source file",
					logging.String("file", name),
					logging.Error(err),
					logging.String(logging.FieldEventType, "analytics_claim_failed"),
				)
			}
		}(name)
	}
	wg.Wait()
}

// quarantine relocates a file that failed ingestion into the failures
// directory. Quarantine is best effort: a failed move is logged and swallowed
// so one bad file cannot abort the batch.
func (w *Workflow) quarantine(logger *slog.Logger, dirs Directories, path string, cause error) {
	name := filepath.Base(path)
	logger.Warn("file failed ingestion; quarantining",
		logging.String("file", name),
		logging.Error(cause),
		logging.String(logging.FieldEventType, "analytics_file_failed"),
	)
	if err := fileutil.EnsureDir(dirs.Failures); err != nil {
		logger.Error("failed to create failures directory",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "file remains in processing directory"),
		)
		return
	}
	if err := fileutil.MoveFile(path, filepath.Join(dirs.Failures, name)); err != nil {
		logger.Error("failed to quarantine file",
			logging.String("file", name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect processing directory manually"),
		)
	}
}

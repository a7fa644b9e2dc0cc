package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"statspub/internal/analytics"
	"statspub/internal/analytics/downloads"
	"statspub/internal/analytics/queries"
	"statspub/internal/config"
	"statspub/internal/logging"
	"statspub/internal/msgq"
	"statspub/internal/publisher"
	"statspub/internal/status"
)

// Daemon coordinates the background publishing and analytics services.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *status.Store
	queue  *msgq.Store
	pub    *publisher.Publisher

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *status.Store, queue *msgq.Store, pub *publisher.Publisher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || queue == nil || pub == nil {
		return nil, errors.New("daemon requires config, store, queue, and publisher")
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		queue:    queue,
		pub:      pub,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the background loops.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another statspub daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.running.Store(true)

	consumer := publisher.NewConsumer(
		d.pub,
		d.queue,
		d.logger,
		time.Duration(d.cfg.Workflow.QueuePollInterval)*time.Second,
		time.Duration(d.cfg.Workflow.ErrorRetryInterval)*time.Second,
	)

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		consumer.Run(runCtx)
	}()
	go func() {
		defer d.wg.Done()
		d.runScheduledScan(runCtx)
	}()

	if d.cfg.Analytics.Enabled {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runAnalytics(runCtx)
		}()
	}

	d.logger.Info("statspub daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop terminates background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("statspub daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	var errs []error
	if d.queue != nil {
		errs = append(errs, d.queue.Close())
	}
	if d.store != nil {
		errs = append(errs, d.store.Close())
	}
	return errors.Join(errs...)
}

// runScheduledScan periodically starts publish runs for scheduled releases
// whose publish time has arrived.
func (d *Daemon) runScheduledScan(ctx context.Context) {
	interval := time.Duration(d.cfg.Workflow.ScheduledScanInterval) * time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		due, err := d.store.ScheduledDue(ctx, time.Now())
		if err != nil {
			d.logger.Error("failed to scan for due releases",
				logging.Error(err),
				logging.String(logging.FieldEventType, "scheduled_scan_failed"),
			)
			continue
		}
		for _, record := range due {
			if _, err := d.pub.StartScheduled(ctx, record); err != nil {
				d.logger.Error("failed to start scheduled release",
					logging.String(logging.FieldReleaseVersionID, record.ReleaseVersionID.String()),
					logging.Error(err),
					logging.String(logging.FieldEventType, "scheduled_start_failed"),
				)
			}
		}
	}
}

// runAnalytics drives each enabled processor on the configured interval. Runs
// for a given processor are sequential within one daemon, and the instance
// lock prevents a second daemon from racing the same directories.
func (d *Daemon) runAnalytics(ctx context.Context) {
	workflow := analytics.NewWorkflow(d.logger, d.cfg.Analytics.ClaimConcurrency)
	processors := d.buildProcessors()
	interval := time.Duration(d.cfg.Workflow.AnalyticsRunInterval) * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		for _, proc := range processors {
			if ctx.Err() != nil {
				return
			}
			if err := workflow.Process(ctx, proc); err != nil {
				d.logger.Error("analytics run failed",
					logging.String(logging.FieldProcessor, proc.Name()),
					logging.Error(err),
					logging.String(logging.FieldEventType, "analytics_run_failed"),
					logging.String(logging.FieldErrorHint, "leftover files will be retried next run"),
				)
			}
		}
	}
}

func (d *Daemon) buildProcessors() []analytics.Processor {
	base := d.cfg.Paths.AnalyticsDir
	processors := make([]analytics.Processor, 0, len(d.cfg.Analytics.Processors))
	for _, name := range d.cfg.Analytics.Processors {
		switch name {
		case queries.Name:
			processors = append(processors, queries.New(base))
		case downloads.Name:
			processors = append(processors, downloads.New(base))
		default:
			d.logger.Warn("ignoring unknown processor", logging.String(logging.FieldProcessor, name))
		}
	}
	return processors
}

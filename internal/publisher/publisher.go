package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"statspub/internal/logging"
	"statspub/internal/msgq"
	"statspub/internal/services"
	"statspub/internal/status"
)

// Publisher coordinates publish attempts for release versions.
type Publisher struct {
	store  *status.Store
	queue  msgq.Sender
	logger *slog.Logger
}

// New constructs a publisher over the status store and message channel.
func New(store *status.Store, queue msgq.Sender, logger *slog.Logger) *Publisher {
	return &Publisher{
		store:  store,
		queue:  queue,
		logger: logging.NewComponentLogger(logger, "publisher"),
	}
}

// Request identifies the release being published and its display metadata.
type Request struct {
	ReleaseVersionID uuid.UUID
	PublicationSlug  string
	ReleaseSlug      string
}

// Schedule supersedes any pending attempt and records a new attempt waiting
// for its publish time.
func (p *Publisher) Schedule(ctx context.Context, req Request, publishAt time.Time) (*status.Record, error) {
	if err := p.supersedePending(ctx, req.ReleaseVersionID); err != nil {
		return nil, err
	}
	at := publishAt.UTC()
	record, err := p.store.Create(ctx, status.CreateParams{
		ReleaseVersionID: req.ReleaseVersionID,
		PublicationSlug:  req.PublicationSlug,
		ReleaseSlug:      req.ReleaseSlug,
		PublishAt:        &at,
	}, status.PresetScheduled, fmt.Sprintf("Scheduled for %s", at.Format(time.RFC3339)))
	if err != nil {
		return nil, err
	}
	p.logAttempt(ctx, record, "release scheduled", "publish_scheduled")
	return record, nil
}

// PublishImmediate supersedes any pending attempt, starts an on-demand publish
// run, and signals the content and files workers to begin.
func (p *Publisher) PublishImmediate(ctx context.Context, req Request) (*status.Record, error) {
	if err := p.supersedePending(ctx, req.ReleaseVersionID); err != nil {
		return nil, err
	}
	record, err := p.store.Create(ctx, status.CreateParams{
		ReleaseVersionID: req.ReleaseVersionID,
		PublicationSlug:  req.PublicationSlug,
		ReleaseSlug:      req.ReleaseSlug,
		Immediate:        true,
	}, status.PresetImmediateStarted, "Immediate publish requested")
	if err != nil {
		return nil, err
	}
	if err := p.enqueueStageWork(ctx, record); err != nil {
		return nil, err
	}
	p.logAttempt(ctx, record, "immediate publish started", "publish_started")
	return record, nil
}

// Invalidate records an attempt rejected by validation before any stage ran.
func (p *Publisher) Invalidate(ctx context.Context, req Request, reasons ...string) (*status.Record, error) {
	messages := append([]string{"Release failed validation"}, reasons...)
	record, err := p.store.Create(ctx, status.CreateParams{
		ReleaseVersionID: req.ReleaseVersionID,
		PublicationSlug:  req.PublicationSlug,
		ReleaseSlug:      req.ReleaseSlug,
	}, status.PresetInvalid, messages...)
	if err != nil {
		return nil, err
	}
	p.logAttempt(ctx, record, "release invalidated", "publish_invalid")
	return record, nil
}

// StartScheduled begins the scheduled-time publish run for a previously
// scheduled attempt. The waiting record is superseded and a fresh attempt is
// created, so the audit trail keeps one record per run.
func (p *Publisher) StartScheduled(ctx context.Context, scheduled *status.Record) (*status.Record, error) {
	if scheduled == nil {
		return nil, errors.New("scheduled record is nil")
	}
	if scheduled.Overall != status.OverallScheduled {
		return nil, fmt.Errorf("attempt %s is %s, not scheduled", scheduled.ReleaseStatusID, scheduled.Overall)
	}

	status.PresetSuperseded.Apply(scheduled)
	scheduled.AppendEvent("Superseded by scheduled publish run")
	if err := p.store.Upsert(ctx, scheduled); err != nil {
		return nil, err
	}

	record, err := p.store.Create(ctx, status.CreateParams{
		ReleaseVersionID: scheduled.ReleaseVersionID,
		PublicationSlug:  scheduled.PublicationSlug,
		ReleaseSlug:      scheduled.ReleaseSlug,
		PublishAt:        scheduled.PublishAt,
	}, status.PresetScheduledStarted, "Scheduled publish run started")
	if err != nil {
		return nil, err
	}
	if err := p.enqueueStageWork(ctx, record); err != nil {
		return nil, err
	}
	p.logAttempt(ctx, record, "scheduled publish started", "publish_started")
	return record, nil
}

// enqueueStageWork signals the content and files workers to begin their stages
// for a freshly started attempt.
func (p *Publisher) enqueueStageWork(ctx context.Context, record *status.Record) error {
	for _, stage := range []status.Stage{status.StageContent, status.StageFiles} {
		work := msgq.StageWork{
			ReleaseVersionID: record.ReleaseVersionID,
			ReleaseStatusID:  record.ReleaseStatusID,
			Stage:            stage,
			Immediate:        record.Immediate,
		}
		if err := p.queue.Send(ctx, msgq.QueueStageWork, work); err != nil {
			return fmt.Errorf("enqueue %s stage work: %w", stage, err)
		}
	}
	return nil
}

// HandleStageUpdate applies one reported stage transition. Updates against a
// terminal attempt are dropped with a warning; they are stale by definition.
// Once content and files are both complete a publish request is enqueued for
// the publishing worker. The decision reads only the attempt's persisted
// state, so a redelivered update retries an enqueue that previously failed
// and skips one already recorded.
func (p *Publisher) HandleStageUpdate(ctx context.Context, update msgq.StageUpdate) error {
	ctx = services.WithReleaseVersionID(ctx, update.ReleaseVersionID.String())
	ctx = services.WithReleaseStatusID(ctx, update.ReleaseStatusID.String())
	logger := logging.WithContext(ctx, p.logger)

	record, err := p.store.Get(ctx, update.ReleaseVersionID, update.ReleaseStatusID)
	if err != nil {
		return err
	}
	if record == nil {
		return services.Wrap(services.ErrNotFound, "publisher", "stage update",
			fmt.Sprintf("no attempt %s for release %s", update.ReleaseStatusID, update.ReleaseVersionID), nil)
	}

	if err := record.SetStage(update.Stage, update.Value); err != nil {
		if errors.Is(err, status.ErrTerminalOverall) {
			logger.Warn("dropping stale stage update",
				logging.String(logging.FieldStage, string(update.Stage)),
				logging.String("value", string(update.Value)),
				logging.String("overall", string(record.Overall)),
				logging.String(logging.FieldEventType, "stage_update_dropped"),
			)
			return nil
		}
		return err
	}

	record.AppendEvent(fmt.Sprintf("%s stage %s", update.Stage, update.Value.Label()))
	if update.Message != "" {
		record.AppendEvent(update.Message)
	}

	if err := p.store.Upsert(ctx, record); err != nil {
		return err
	}

	logger.Info("stage updated",
		logging.String(logging.FieldStage, string(update.Stage)),
		logging.String("value", string(update.Value)),
		logging.String("overall", string(record.Overall)),
		logging.String(logging.FieldEventType, "stage_updated"),
	)

	if record.ReadyToPublish() && !record.PublishRequested && p.shouldEnqueuePublish(record) {
		return p.enqueuePublish(ctx, logger, record)
	}
	return nil
}

func (p *Publisher) shouldEnqueuePublish(record *status.Record) bool {
	switch record.Publishing {
	case status.StateNotStarted, status.StateScheduled:
		return true
	default:
		return false
	}
}

// enqueuePublish sends the publishing-start message and then persists the
// PublishRequested marker. The send happens first: a redelivered stage update
// retries the send until the marker is durably recorded, at the cost of a
// possible duplicate publish request, which downstream must already tolerate
// under at-least-once delivery.
func (p *Publisher) enqueuePublish(ctx context.Context, logger *slog.Logger, record *status.Record) error {
	request := msgq.PublishRequest{
		ReleaseVersionID: record.ReleaseVersionID,
		ReleaseStatusID:  record.ReleaseStatusID,
		Immediate:        record.Immediate,
	}
	if err := p.queue.Send(ctx, msgq.QueuePublishRequests, request); err != nil {
		return fmt.Errorf("enqueue publish request: %w", err)
	}
	record.PublishRequested = true
	record.AppendEvent("Publishing requested")
	if err := p.store.Upsert(ctx, record); err != nil {
		return err
	}
	logger.Info("publish request enqueued",
		logging.String(logging.FieldQueue, msgq.QueuePublishRequests),
		logging.String(logging.FieldEventType, "publish_enqueued"),
	)
	return nil
}

// supersedePending marks every scheduled or started attempt for the release as
// superseded. The records stay in the store as an audit trail.
func (p *Publisher) supersedePending(ctx context.Context, releaseVersionID uuid.UUID) error {
	pending, err := p.store.PendingForRelease(ctx, releaseVersionID)
	if err != nil {
		return err
	}
	for _, record := range pending {
		status.PresetSuperseded.Apply(record)
		record.AppendEvent("Superseded by newer publish request")
		if err := p.store.Upsert(ctx, record); err != nil {
			return err
		}
		p.logAttempt(ctx, record, "attempt superseded", "publish_superseded")
	}
	return nil
}

func (p *Publisher) logAttempt(ctx context.Context, record *status.Record, message, eventType string) {
	logging.WithContext(ctx, p.logger).Info(message,
		logging.String(logging.FieldReleaseVersionID, record.ReleaseVersionID.String()),
		logging.String(logging.FieldReleaseStatusID, record.ReleaseStatusID.String()),
		logging.String("publication", record.PublicationSlug),
		logging.String("release", record.ReleaseSlug),
		logging.String("overall", string(record.Overall)),
		logging.String(logging.FieldEventType, eventType),
	)
}

package publisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"statspub/internal/logging"
	"statspub/internal/msgq"
	"statspub/internal/services"
)

// Consumer drains stage-update messages and applies them through the publisher.
type Consumer struct {
	publisher     *Publisher
	queue         *msgq.Store
	logger        *slog.Logger
	pollInterval  time.Duration
	retryInterval time.Duration
}

// NewConsumer constructs a consumer over the shared message queue.
func NewConsumer(p *Publisher, queue *msgq.Store, logger *slog.Logger, pollInterval, retryInterval time.Duration) *Consumer {
	return &Consumer{
		publisher:     p,
		queue:         queue,
		logger:        logging.NewComponentLogger(logger, "stage-consumer"),
		pollInterval:  pollInterval,
		retryInterval: retryInterval,
	}
}

// Run processes messages until the context is cancelled. Transient failures
// are logged and retried; permanently undecodable or unmatched messages are
// acknowledged and dropped so they cannot wedge the queue.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := c.queue.Receive(ctx, msgq.QueueStageUpdates)
		if err != nil {
			c.logger.Error("failed to receive stage update",
				logging.Error(err),
				logging.String(logging.FieldEventType, "queue_receive_failed"),
				logging.String(logging.FieldErrorHint, "check database access"),
			)
			c.sleep(ctx, c.retryInterval)
			continue
		}
		if msg == nil {
			c.sleep(ctx, c.pollInterval)
			continue
		}

		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg *msgq.Message) {
	var update msgq.StageUpdate
	if err := msg.Decode(&update); err != nil {
		c.logger.Error("dropping undecodable stage update",
			logging.Int64("message_id", msg.ID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "stage_update_undecodable"),
		)
		c.ack(ctx, msg)
		return
	}

	if err := c.publisher.HandleStageUpdate(ctx, update); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.logger.Warn("dropping stage update for unknown attempt",
				logging.Int64("message_id", msg.ID),
				logging.Error(err),
				logging.String(logging.FieldEventType, "stage_update_unmatched"),
			)
			c.ack(ctx, msg)
			return
		}
		c.logger.Error("stage update failed; message will be redelivered",
			logging.Int64("message_id", msg.ID),
			logging.Error(err),
			logging.String(logging.FieldEventType, "stage_update_failed"),
		)
		if nackErr := c.queue.Nack(ctx, msg.ID); nackErr != nil {
			c.logger.Error("failed to release message", logging.Error(nackErr))
		}
		c.sleep(ctx, c.retryInterval)
		return
	}

	c.ack(ctx, msg)
}

func (c *Consumer) ack(ctx context.Context, msg *msgq.Message) {
	if err := c.queue.Ack(ctx, msg.ID); err != nil {
		c.logger.Error("failed to ack message",
			logging.Int64("message_id", msg.ID),
			logging.Error(err),
		)
	}
}

func (c *Consumer) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"photopost/internal/core/ports"
	"photopost/internal/shared/metrics"
)

// Consumer is the single queue-draining loop. It leases one item at a time,
// runs the handler with a bounded retry, and always completes the item so a
// poison job cannot wedge the queue.
type Consumer struct {
	queue      ports.WorkQueue
	handler    ports.QueueHandler
	lease      time.Duration
	poll       time.Duration
	attempts   int
	retryDelay time.Duration
	log        zerolog.Logger
}

func NewConsumer(
	queue ports.WorkQueue,
	handler ports.QueueHandler,
	lease, poll time.Duration,
	attempts int,
	retryDelay time.Duration,
	baseLogger zerolog.Logger,
) *Consumer {
	return &Consumer{
		queue:      queue,
		handler:    handler,
		lease:      lease,
		poll:       poll,
		attempts:   attempts,
		retryDelay: retryDelay,
		log:        baseLogger.With().Str("component", "QueueConsumer").Logger(),
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.log.Info().Dur("lease", c.lease).Dur("poll", c.poll).Msg("queue consumer started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("queue consumer stopped")
			return
		default:
		}
		if !c.processOne(ctx) {
			c.sleep(ctx)
		}
	}
}

// processOne leases and runs a single job. It reports false when the queue
// was empty or the lease failed, signalling the caller to back off.
func (c *Consumer) processOne(ctx context.Context) bool {
	item, err := c.queue.Lease(ctx, c.lease)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Error().Err(err).Msg("failed to lease a job")
		}
		return false
	}
	if item == nil {
		return false
	}

	log := c.log.With().Str("job", item.Message.String()).Logger()
	err = withRetry(ctx, c.attempts, c.retryDelay, func(ctx context.Context) error {
		return c.handler.Handle(ctx, item.Message)
	})
	if err != nil {
		metrics.JobsProcessed.WithLabelValues("failed").Inc()
		log.Error().Err(err).Int("attempts", c.attempts).Msg("job failed, dead-lettering")
		if dlErr := c.queue.DeadLetter(ctx, item, err); dlErr != nil {
			log.Error().Err(dlErr).Msg("failed to dead-letter job")
		} else {
			metrics.JobsDeadLettered.Inc()
		}
	} else {
		metrics.JobsProcessed.WithLabelValues("ok").Inc()
	}

	// Completed regardless of outcome: retrying a job past its budget would
	// block everything behind it.
	if err := c.queue.Complete(ctx, item.ID); err != nil {
		log.Error().Err(err).Msg("failed to complete job")
	}
	return true
}

func (c *Consumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(c.poll):
	}
}

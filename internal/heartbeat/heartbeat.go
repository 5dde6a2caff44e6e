// Package heartbeat periodically publishes a dashboard-style notification
// that the router turns into a reconciliation sweep. The sweep trigger thus
// travels the same queue path as every other event instead of being a
// private code path inside the processor.
package heartbeat

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/invest-earning/event-engine/internal/broker"
)

// Message is the notification published on every beat.
const Message = "[dashboard] QUERIED GROUP all ON earning_yield"

// Heartbeat schedules sweep-trigger notifications.
type Heartbeat struct {
	pub   broker.Publisher
	queue string
	cron  *cron.Cron
	log   zerolog.Logger
}

// New creates a Heartbeat that publishes to the notification queue.
func New(pub broker.Publisher, queue string, log zerolog.Logger) *Heartbeat {
	return &Heartbeat{
		pub:   pub,
		queue: queue,
		cron:  cron.New(),
		log:   log.With().Str("component", "heartbeat").Logger(),
	}
}

// Start schedules beats on the given cron expression. An empty schedule
// disables the heartbeat.
func (h *Heartbeat) Start(schedule string) error {
	if schedule == "" {
		h.log.Info().Msg("heartbeat disabled")
		return nil
	}

	if _, err := h.cron.AddFunc(schedule, h.beat); err != nil {
		return fmt.Errorf("invalid heartbeat schedule %q: %w", schedule, err)
	}

	h.cron.Start()
	h.log.Info().Str("schedule", schedule).Msg("heartbeat started")
	return nil
}

// Stop cancels future beats. A beat already publishing runs to completion.
func (h *Heartbeat) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
}

func (h *Heartbeat) beat() {
	if err := h.pub.Publish(h.queue, "text/plain", []byte(Message)); err != nil {
		h.log.Error().Err(err).Msg("failed to publish heartbeat")
		return
	}
	h.log.Debug().Msg("heartbeat published")
}

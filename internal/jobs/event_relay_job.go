package jobs

import (
	"context"
	"log/slog"

	"parcelhub/internal/core/application/usecases/commands"
	"parcelhub/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

const (
	DefaultRelaySchedule = "*/5 * * * * *"
	// maxPagesPerRun bounds one run so a large backlog cannot hold the job
	// forever; the next tick continues from the saved cursor.
	maxPagesPerRun = 20
)

// EventRelayJob publishes new warehouse events on a cron schedule. Each run
// drains pages until a short page or maxPagesPerRun.
type EventRelayJob struct {
	handler   commands.RelayEventsCommandHandler
	relay     string
	batchSize int
	schedule  string
	metrics   *metrics.Metrics
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewEventRelayJob(
	handler commands.RelayEventsCommandHandler,
	relay string,
	schedule string,
	batchSize int,
	m *metrics.Metrics,
	logger *slog.Logger,
) *EventRelayJob {
	if schedule == "" {
		schedule = DefaultRelaySchedule
	}
	return &EventRelayJob{
		handler:   handler,
		relay:     relay,
		batchSize: batchSize,
		schedule:  schedule,
		metrics:   m,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "event_relay_job", "relay", relay),
	}
}

func (j *EventRelayJob) Start() error {
	cmd, err := commands.NewRelayEventsCommand(j.relay, j.batchSize)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc(j.schedule, func() {
		j.runOnce(context.Background(), cmd)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Event relay job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running relay pass to finish.
func (j *EventRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Event relay job stopped")
}

func (j *EventRelayJob) runOnce(ctx context.Context, cmd commands.RelayEventsCommand) int {
	total := 0
	for range maxPagesPerRun {
		result, err := j.handler.Handle(ctx, cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Event relay failed", "error", err, "published", total)
			return total
		}

		total += result.Published
		j.metrics.ObserveRelay(result.Published)
		if result.Published > 0 {
			j.logger.DebugContext(ctx, "Events relayed", "count", result.Published, "cursor", result.Cursor)
		}
		if result.Published < j.batchSize {
			break
		}
	}
	return total
}

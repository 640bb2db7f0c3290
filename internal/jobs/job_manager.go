package jobs

import (
	"fmt"
)

// JobManager coordinates the scheduled jobs of the service.
type JobManager struct {
	eventRelayJob *EventRelayJob
}

// NewJobManager takes the jobs to run. A nil job is skipped, which is how
// the relay stays off when no broker is configured.
func NewJobManager(eventRelayJob *EventRelayJob) *JobManager {
	return &JobManager{eventRelayJob: eventRelayJob}
}

func (jm *JobManager) StartAll() error {
	if jm.eventRelayJob == nil {
		return nil
	}
	if err := jm.eventRelayJob.Start(); err != nil {
		return fmt.Errorf("failed to start event relay job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	if jm.eventRelayJob != nil {
		jm.eventRelayJob.Stop()
	}
}

// Package jobs provides scheduled background tasks for the parcel engine.
//
// Jobs are cron-based (github.com/robfig/cron/v3 with a seconds field).
//
// # Available Jobs
//
// EventRelayJob copies new entries of the warehouse event log to the
// message broker. The log itself is never modified; progress is kept in a
// per-relay cursor that advances in the same unit of work as the read, and
// only after the broker acknowledged the batch. A crash between publish and
// commit republishes the batch, so consumers must tolerate duplicates and
// can deduplicate by event id.
//
// # Usage
//
//	relayJob := jobs.NewEventRelayJob(handler, "kafka", "*/5 * * * * *", 200, m, logger)
//	jobManager := jobs.NewJobManager(relayJob)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Overlapping runs are skipped, so a slow broker never stacks relay passes.
package jobs

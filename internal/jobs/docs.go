// Package jobs provides scheduled background tasks for the order pipeline.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for order monitoring.
//
// # Available Jobs
//
// 1. StaleLocationJob - Runs every 30 seconds to flag delivering orders whose
// location has not been refreshed within the staleness window
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(flagStaleLocationsHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Scan failures are logged and retried on the next tick
// - Failed job starts will stop any already running jobs
package jobs

// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the dispatch service.
//
// # Available Jobs
//
// 1. OverdueDeliveryJob - Runs every 30 seconds to flag out-for-delivery orders past their estimated delivery time
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(orderStore, broadcaster, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The overdue scan uses the cron expression "*/30 * * * * *", running twice a
// minute. Late deliveries are announced well within a customer's patience
// window without hammering the store on every tick.
//
// # Error Handling
//
// - A failed scan is logged and retried on the next cycle
// - A failed notice publish is logged and does not abort the rest of the scan
// - Failed job starts will stop any already running jobs
package jobs

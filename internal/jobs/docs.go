// Package jobs provides scheduled background tasks of the marketplace.
//
// Jobs are cron-based (github.com/robfig/cron/v3, with a seconds field) and run
// commands through the same handlers as the HTTP API.
//
// # Available Jobs
//
// ExpiredCheckoutJob discards checkouts whose payment was never confirmed within
// the checkout TTL, exactly as a failed payment verification would.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(logger,
//		jobs.NewExpiredCheckoutJob(expireHandler, jobs.ExpiredCheckoutConfig{TTL: 24 * time.Hour}, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// A job that fails to start stops the jobs started before it.
package jobs

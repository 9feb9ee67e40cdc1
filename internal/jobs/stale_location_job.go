package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"orderflow/internal/core/application/usecases/commands"
)

// staleLocationSchedule runs the scan every thirty seconds.
const staleLocationSchedule = "*/30 * * * * *"

// StaleLocationJob periodically scans delivering orders for location samples
// that have gone quiet and raises an admin alert for each one.
type StaleLocationJob struct {
	handler commands.FlagStaleLocationsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewStaleLocationJob creates a new job for the stale location scan.
// Uses FlagStaleLocationsCommandHandler to inspect all delivering orders.
func NewStaleLocationJob(handler commands.FlagStaleLocationsCommandHandler, logger *slog.Logger) *StaleLocationJob {
	return &StaleLocationJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "stale_location_job"),
	}
}

// Start begins the stale location scan on its thirty second schedule.
func (j *StaleLocationJob) Start() error {
	_, err := j.cron.AddFunc(staleLocationSchedule, func() {
		ctx := context.Background()
		cmd := commands.NewFlagStaleLocationsCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Stale location scan failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale location job started (running every 30 seconds)")
	return nil
}

// Stop stops the stale location job.
func (j *StaleLocationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale location job stopped")
}

package tracker

import (
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// backgroundSchedule fires every 30 seconds.
const backgroundSchedule = "*/30 * * * * *"

// BackgroundScheduler runs the background tracking tick on a cron schedule.
// Start and Stop may be called repeatedly; each Start creates a fresh cron
// runner so a stopped scheduler can be reused.
type BackgroundScheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	logger *slog.Logger
}

// NewBackgroundScheduler creates a stopped scheduler.
func NewBackgroundScheduler(logger *slog.Logger) *BackgroundScheduler {
	return &BackgroundScheduler{
		logger: logger.With("component", "background_scheduler"),
	}
}

// Start begins running fn every 30 seconds. Starting an already started
// scheduler replaces the previous run.
func (s *BackgroundScheduler) Start(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		s.cron.Stop()
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(backgroundSchedule, fn); err != nil {
		return err
	}

	c.Start()
	s.cron = c
	s.logger.Info("background tracking schedule started", "schedule", backgroundSchedule)
	return nil
}

// Stop halts the schedule. Safe to call when not started.
func (s *BackgroundScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	s.cron.Stop()
	s.cron = nil
	s.logger.Info("background tracking schedule stopped")
}

// Package reminders runs the overdue task scan on a cron schedule.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSchedule scans once an hour.
const DefaultSchedule = "@hourly"

// Runner emits the reminders for one scan and reports how many were emitted.
type Runner interface {
	NotifyOverdue(ctx context.Context, now time.Time) (int, error)
}

type Scheduler struct {
	schedule string
	runner   Runner
	cron     *cron.Cron
	now      func() time.Time
	logger   *slog.Logger
}

func NewScheduler(schedule string, runner Runner, logger *slog.Logger) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	if runner == nil {
		return nil, errors.New("reminder runner is required")
	}

	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule: %w", err)
	}

	return &Scheduler{
		schedule: schedule,
		runner:   runner,
		now:      time.Now,
		logger:   logger.With("module", "reminder_scheduler", "schedule", schedule),
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting reminder scheduler")

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(s.schedule, func() { s.Run(ctx) })
	if err != nil {
		return fmt.Errorf("failed to add reminder job: %w", err)
	}

	s.cron.Start()

	return nil
}

// Run performs one scan. Failures are logged; the next tick retries.
func (s *Scheduler) Run(ctx context.Context) {
	emitted, err := s.runner.NotifyOverdue(ctx, s.now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Overdue reminder scan failed", "error", err)

		return
	}

	s.logger.DebugContext(ctx, "Overdue reminder scan finished", "emitted", emitted)
}

// Stop waits for a running scan to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

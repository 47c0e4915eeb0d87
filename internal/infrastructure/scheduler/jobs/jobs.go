// Package jobs contains the scheduled jobs of the tracker daemon.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// Job names.
const (
	NotifyDueName = "notify_due"
	DayCheckName  = "check_day"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFY DUE JOB
// ══════════════════════════════════════════════════════════════════════════════

// DueNotifier fires the reminder for the earliest due slot, if any.
type DueNotifier interface {
	NotifyDue(ctx context.Context) (fired bool, err error)
}

// NotifyDueJob polls today's schedule and sends at most one reminder per run.
type NotifyDueJob struct {
	notifier DueNotifier
	timeout  time.Duration
	logger   *slog.Logger
}

// NewNotifyDueJob creates the due-session poll job.
func NewNotifyDueJob(notifier DueNotifier, timeout time.Duration, log *slog.Logger) *NotifyDueJob {
	if log == nil {
		log = slog.Default()
	}
	return &NotifyDueJob{notifier: notifier, timeout: timeout, logger: log}
}

// Name implements scheduler.Job.
func (j *NotifyDueJob) Name() string { return NotifyDueName }

// Description implements scheduler.Job.
func (j *NotifyDueJob) Description() string {
	return "Sends the reminder for the earliest due session slot"
}

// Run implements scheduler.Job.
func (j *NotifyDueJob) Run(ctx context.Context) error {
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	fired, err := j.notifier.NotifyDue(ctx)
	if err != nil {
		return err
	}
	if fired {
		j.logger.Debug("session reminder fired", logger.Component("jobs"))
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DAY CHECK JOB
// ══════════════════════════════════════════════════════════════════════════════

// DayChecker archives the stored day when the logical day has changed.
type DayChecker interface {
	CheckDay(ctx context.Context) (rolled bool, err error)
}

// DayCheckJob runs the day-boundary check. The daemon also runs it on start
// and when the host reports the application resumed.
type DayCheckJob struct {
	checker DayChecker
	logger  *slog.Logger
}

// NewDayCheckJob creates the day-boundary job.
func NewDayCheckJob(checker DayChecker, log *slog.Logger) *DayCheckJob {
	if log == nil {
		log = slog.Default()
	}
	return &DayCheckJob{checker: checker, logger: log}
}

// Name implements scheduler.Job.
func (j *DayCheckJob) Name() string { return DayCheckName }

// Description implements scheduler.Job.
func (j *DayCheckJob) Description() string {
	return "Archives yesterday and resets the daily schedule after the day boundary"
}

// Run implements scheduler.Job.
func (j *DayCheckJob) Run(ctx context.Context) error {
	rolled, err := j.checker.CheckDay(ctx)
	if err != nil {
		return err
	}
	if rolled {
		j.logger.Info("day rolled over", logger.Component("jobs"))
	}
	return nil
}

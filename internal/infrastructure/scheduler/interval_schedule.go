package scheduler

import (
	"context"
	"fmt"
	"time"
)

// IntervalSchedule schedules a job to run at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every creates an IntervalSchedule. Non-positive intervals become one second.
func Every(interval time.Duration) *IntervalSchedule {
	if interval <= 0 {
		interval = time.Second
	}
	return &IntervalSchedule{Interval: interval}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// FuncJob adapts a function to Job.
type FuncJob struct {
	JobName string
	Desc    string
	Fn      func(ctx context.Context) error
}

// Name implements Job.
func (j FuncJob) Name() string { return j.JobName }

// Description implements Job.
func (j FuncJob) Description() string { return j.Desc }

// Run implements Job.
func (j FuncJob) Run(ctx context.Context) error { return j.Fn(ctx) }

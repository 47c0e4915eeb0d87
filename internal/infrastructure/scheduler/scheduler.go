// Package scheduler runs the tracker's periodic jobs: the due-session poll and
// the day-boundary check. Jobs never overlap themselves, and Stop waits for
// every running job so no goroutine outlives the scheduler.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// Schedule defines when a job should run.
type Schedule interface {
	// Next returns the next time the job should run after the given time.
	Next(t time.Time) time.Time

	// String returns a human-readable representation of the schedule.
	String() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
	Manual      bool
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler manages and executes scheduled jobs.
type Scheduler struct {
	mu sync.RWMutex

	logger       *slog.Logger
	tickInterval time.Duration

	jobs      map[string]*scheduledJob
	running   bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startedAt time.Time

	onJobComplete func(result JobResult)
}

// scheduledJob wraps a Job with scheduling information.
type scheduledJob struct {
	job       Job
	schedule  Schedule
	busy      bool
	lastRun   time.Time
	nextRun   time.Time
	runCount  int64
	failCount int64
	last      *JobResult
}

// Config contains configuration for the Scheduler.
type Config struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// TickInterval is how often due jobs are looked for. Default: 1s.
	TickInterval time.Duration
}

// New creates a new Scheduler with the given configuration.
func New(config Config) *Scheduler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}

	return &Scheduler{
		logger:       config.Logger.With(logger.Component("scheduler")),
		tickInterval: config.TickInterval,
		jobs:         make(map[string]*scheduledJob),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// JOB REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// Register adds a job to the scheduler with the given schedule.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}

	sj := &scheduledJob{
		job:      job,
		schedule: schedule,
		nextRun:  schedule.Next(time.Now()),
	}
	s.jobs[name] = sj

	s.logger.Info("job registered",
		slog.String("job", name),
		slog.String("schedule", schedule.String()),
		slog.Time("next_run", sj.nextRun),
	)

	return nil
}

// OnJobComplete sets a callback invoked after every run, scheduled or manual.
func (s *Scheduler) OnJobComplete(fn func(result JobResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onJobComplete = fn
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.startedAt = time.Now()
	jobCount := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("scheduler started", slog.Int("jobs_count", jobCount))

	s.wg.Add(1)
	go s.runLoop()

	return nil
}

// Stop cancels the loop and waits for running jobs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	s.logger.Info("scheduler stopped", slog.String("uptime", time.Since(s.startedAt).String()))

	return nil
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER LOOP
// ══════════════════════════════════════════════════════════════════════════════

func (s *Scheduler) runLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRunJobs()
		}
	}
}

// checkAndRunJobs starts every job whose next run has passed and
// that is not still running.
func (s *Scheduler) checkAndRunJobs() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	for _, sj := range s.jobs {
		if sj.busy || sj.nextRun.IsZero() || now.Before(sj.nextRun) {
			continue
		}
		sj.busy = true
		sj.lastRun = now
		sj.nextRun = sj.schedule.Next(now)
		sj.runCount++

		s.wg.Add(1)
		go s.runJob(sj)
	}
}

func (s *Scheduler) runJob(sj *scheduledJob) {
	defer s.wg.Done()

	result := s.execute(s.ctx, sj.job, false)

	s.mu.Lock()
	sj.busy = false
	if !result.Success {
		sj.failCount++
	}
	sj.last = &result
	hook := s.onJobComplete
	s.mu.Unlock()

	if hook != nil {
		hook(result)
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job, manual bool) JobResult {
	startedAt := time.Now()
	err := job.Run(ctx)
	completedAt := time.Now()

	result := JobResult{
		JobName:     job.Name(),
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Success:     err == nil,
		Error:       err,
		Manual:      manual,
	}

	switch {
	case err == nil:
		s.logger.Debug("job completed", slog.String("job", result.JobName), logger.Latency(result.Duration))
	case errors.Is(err, context.Canceled):
		s.logger.Debug("job cancelled", slog.String("job", result.JobName))
	default:
		s.logger.Error("job failed", slog.String("job", result.JobName), logger.Latency(result.Duration), logger.Err(err))
	}

	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// MANUAL EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// RunNow executes a job by name synchronously, ignoring its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (*JobResult, error) {
	s.mu.RLock()
	sj, exists := s.jobs[jobName]
	hook := s.onJobComplete
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}

	result := s.execute(ctx, sj.job, true)

	s.mu.Lock()
	sj.last = &result
	if !result.Success {
		sj.failCount++
	}
	s.mu.Unlock()

	if hook != nil {
		hook(result)
	}
	return &result, result.Error
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS & INFO
// ══════════════════════════════════════════════════════════════════════════════

// JobInfo contains information about a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	NextRun     time.Time
	RunCount    int64
	FailCount   int64
	LastResult  *JobResult
}

// GetJobInfo returns information about a specific job.
func (s *Scheduler) GetJobInfo(jobName string) (*JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sj, exists := s.jobs[jobName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}

	return &JobInfo{
		Name:        jobName,
		Description: sj.job.Description(),
		Schedule:    sj.schedule.String(),
		LastRun:     sj.lastRun,
		NextRun:     sj.nextRun,
		RunCount:    sj.runCount,
		FailCount:   sj.failCount,
		LastResult:  sj.last,
	}, nil
}

// Healthy reports an error when the scheduler is stopped, a named job is
// missing, or its latest run failed. A job that has not run yet is healthy.
func (s *Scheduler) Healthy(jobNames ...string) error {
	if !s.IsRunning() {
		return ErrSchedulerNotRunning
	}
	for _, name := range jobNames {
		info, err := s.GetJobInfo(name)
		if err != nil {
			return err
		}
		if last := info.LastResult; last != nil && !last.Success {
			return fmt.Errorf("job %s failed: %w", name, last.Error)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNilJob is returned when trying to register a nil job.
	ErrNilJob = errors.New("job cannot be nil")

	// ErrNilSchedule is returned when trying to register a job with nil schedule.
	ErrNilSchedule = errors.New("schedule cannot be nil")

	// ErrJobAlreadyExists is returned when a job with the same name already exists.
	ErrJobAlreadyExists = errors.New("job already exists")

	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")

	// ErrSchedulerAlreadyRunning is returned when Start is called on a running scheduler.
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")

	// ErrSchedulerNotRunning is returned when Stop is called on a stopped scheduler.
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
)

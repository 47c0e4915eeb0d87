package http

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// CheckFunc performs a single readiness check. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Pinger is anything that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger to a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}

// HealthStatus is the aggregated result of all checks.
type HealthStatus struct {
	Healthy   bool                   `json:"healthy"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// HealthChecker runs named checks concurrently, each under its own timeout.
type HealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	startTime time.Time
	version   string
	timeout   time.Duration
	now       func() time.Time
}

// NewHealthChecker creates a HealthChecker with a 5s per-check timeout.
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
		now:       time.Now,
	}
}

// SetTimeout sets the per-check timeout.
func (c *HealthChecker) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.timeout = timeout
	}
}

// AddCheck registers a named check, replacing any check with the same name.
func (c *HealthChecker) AddCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Check runs every registered check and aggregates the results.
func (c *HealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    c.now().Sub(c.startTime).Round(time.Second).String(),
		Timestamp: c.now().UTC(),
		Version:   c.version,
	}
	if len(checks) == 0 {
		status.Message = "no checks registered"
		return status
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			result := CheckResult{
				Healthy:  err == nil,
				Message:  "OK",
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				result.Message = err.Error()
			}

			mu.Lock()
			status.Checks[name] = result
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	var failed []string
	for name, r := range status.Checks {
		if !r.Healthy {
			failed = append(failed, name)
		}
	}
	if len(failed) == 0 {
		status.Message = "all checks passed"
		return status
	}
	sort.Strings(failed)
	status.Healthy = false
	status.Message = "failing: " + strings.Join(failed, ", ")
	return status
}

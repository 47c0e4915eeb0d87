package query

import (
	"context"
	"fmt"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/progression"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD QUERY
// Today's schedule with derived slot states, the next session countdown and
// the level progress bar.
// ══════════════════════════════════════════════════════════════════════════════

// CountdownReady is shown when the next session's time has come.
const CountdownReady = "READY"

// SlotDTO is one schedule slot as shown on the dashboard.
type SlotDTO struct {
	SessionID  int             `json:"session_id"`
	TargetTime time.Time       `json:"target_time"`
	Clock      string          `json:"clock"`
	State      daily.SlotState `json:"state"`
	Notified   bool            `json:"notified"`
}

// NextSessionDTO describes the next session to do.
type NextSessionDTO struct {
	SessionID  int                        `json:"session_id"`
	TargetTime *time.Time                 `json:"target_time,omitempty"`
	Countdown  string                     `json:"countdown,omitempty"`
	Exercises  []progression.ExerciseItem `json:"exercises"`
}

// DashboardResult contains the dashboard view.
type DashboardResult struct {
	Username       string `json:"username"`
	DayKey         string `json:"day_key"`
	SessionsDone   int    `json:"sessions_done"`
	SessionsPerDay int    `json:"sessions_per_day"`
	IsCompleted    bool   `json:"is_completed"`
	HasSchedule    bool   `json:"has_schedule"`

	Slots []SlotDTO `json:"slots"`

	// Next is nil once the day is completed.
	Next *NextSessionDTO `json:"next,omitempty"`

	Stats           progression.Stats `json:"stats"`
	ProgressPercent int               `json:"progress_percent"`
	SessionXP       int               `json:"session_xp"`
	Quote           string            `json:"quote"`

	GeneratedAt time.Time `json:"generated_at"`
}

// DashboardHandler handles the dashboard query.
type DashboardHandler struct {
	deps Deps
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(deps Deps) *DashboardHandler {
	return &DashboardHandler{deps: deps.withDefaults()}
}

// Handle builds the dashboard for now.
func (h *DashboardHandler) Handle(ctx context.Context) (*DashboardResult, error) {
	now := h.deps.Clock.Now()

	u, err := h.deps.Users.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	loc := u.Settings.Location()
	day, err := h.deps.Daily.Today(ctx, u.Settings.DayStartHour, loc, now)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	result := &DashboardResult{
		Username:        u.Profile.Username,
		DayKey:          day.Date,
		SessionsDone:    day.SessionsDone,
		SessionsPerDay:  u.Settings.SessionsPerDay,
		IsCompleted:     day.IsCompleted,
		HasSchedule:     day.HasSchedule(),
		Slots:           make([]SlotDTO, 0, len(day.Schedule)),
		Stats:           u.Stats,
		ProgressPercent: u.Stats.ProgressPercent(),
		SessionXP:       progression.SessionXP(u.Stats.Level),
		Quote:           progression.Quote(u.Stats.Level),
		GeneratedAt:     now,
	}

	for _, slot := range day.Schedule {
		result.Slots = append(result.Slots, SlotDTO{
			SessionID:  slot.SessionID,
			TargetTime: slot.TargetTime,
			Clock:      slot.TargetTime.In(loc).Format("15:04"),
			State:      daily.StateOf(slot, day.SessionsDone, now),
			Notified:   slot.NotificationSent,
		})
	}

	if !day.IsCompleted && day.SessionsDone < u.Settings.SessionsPerDay {
		number := day.SessionsDone + 1
		next := &NextSessionDTO{
			SessionID: number,
			Exercises: progression.DefaultRoutine(number),
		}
		if slot, ok := day.NextPending(); ok {
			target := slot.TargetTime
			next.TargetTime = &target
			next.Countdown = Countdown(target, now)
		}
		result.Next = next
	}

	return result, nil
}

// Countdown renders the time left until target, or READY once it has passed.
func Countdown(target, now time.Time) string {
	left := target.Sub(now)
	if left <= 0 {
		return CountdownReady
	}
	return timeutil.FormatCountdown(left)
}

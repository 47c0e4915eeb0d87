package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULE COMMANDS
// Plan the day, move single slots and resize the plan when the session target
// changes.
// ══════════════════════════════════════════════════════════════════════════════

// StartDayCommand plans today's slots.
type StartDayCommand struct {
	// StartTime is the wall-clock time of the first slot, "HH:MM".
	StartTime string

	// IntervalMinutes is the spacing between slots.
	IntervalMinutes int
}

// Validate validates the command.
func (c StartDayCommand) Validate() error {
	if _, _, err := timeutil.ParseClock(c.StartTime); err != nil {
		return shared.ErrInvalidStartTime
	}
	if c.IntervalMinutes < 1 {
		return shared.ErrInvalidInterval
	}
	return nil
}

// RescheduleSlotCommand moves one slot.
type RescheduleSlotCommand struct {
	SessionID int

	// Time is the new wall-clock time, "HH:MM".
	Time string
}

// Validate validates the command.
func (c RescheduleSlotCommand) Validate() error {
	if c.SessionID < 1 {
		return shared.ErrSlotNotFound
	}
	if _, _, err := timeutil.ParseClock(c.Time); err != nil {
		return shared.ErrInvalidStartTime
	}
	return nil
}

// UpdateSessionsPerDayCommand changes the daily session target.
type UpdateSessionsPerDayCommand struct {
	// SessionsPerDay is clamped into [1, 50].
	SessionsPerDay int
}

// ScheduleResult contains the day after a schedule command.
type ScheduleResult struct {
	// Applied is false when the command did not apply in the current state.
	Applied bool
	Day     daily.Progress
}

// ScheduleHandler handles the schedule commands.
type ScheduleHandler struct {
	deps Deps
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(deps Deps) *ScheduleHandler {
	return &ScheduleHandler{deps: deps.withDefaults()}
}

// StartDay plans today. It does nothing when the day is already planned.
func (h *ScheduleHandler) StartDay(ctx context.Context, cmd StartDayCommand) (*ScheduleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("start_day: %w", err)
	}
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("start_day: %w", err)
	}
	settings := st.user.Settings

	start, err := timeutil.ClockOnDay(st.day.Date, strings.TrimSpace(cmd.StartTime), settings.DayStartHour, settings.Location())
	if err != nil {
		return nil, fmt.Errorf("start_day: %w", err)
	}
	if err := st.day.StartDay(start, cmd.IntervalMinutes, settings.SessionsPerDay); err != nil {
		if h.deps.skipped(ctx, "start_day", err) {
			return &ScheduleResult{Day: st.day}, nil
		}
		return nil, fmt.Errorf("start_day: %w", err)
	}
	if err := h.deps.Daily.Set(ctx, st.day); err != nil {
		return nil, fmt.Errorf("start_day: %w", err)
	}

	h.deps.Logger.InfoContext(ctx, "day planned",
		logger.DayKey(st.day.Date),
		logger.Operation("start_day"),
	)
	return &ScheduleResult{Applied: true, Day: st.day}, nil
}

// RescheduleSlot moves a pending slot and re-arms its reminder.
func (h *ScheduleHandler) RescheduleSlot(ctx context.Context, cmd RescheduleSlotCommand) (*ScheduleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("reschedule_slot: %w", err)
	}
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reschedule_slot: %w", err)
	}
	settings := st.user.Settings

	target, err := timeutil.ClockOnDay(st.day.Date, strings.TrimSpace(cmd.Time), settings.DayStartHour, settings.Location())
	if err != nil {
		return nil, fmt.Errorf("reschedule_slot: %w", err)
	}
	if err := st.day.RescheduleSlot(cmd.SessionID, target); err != nil {
		if h.deps.skipped(ctx, "reschedule_slot", err) {
			return &ScheduleResult{Day: st.day}, nil
		}
		return nil, fmt.Errorf("reschedule_slot: %w", err)
	}
	if err := h.deps.Daily.Set(ctx, st.day); err != nil {
		return nil, fmt.Errorf("reschedule_slot: %w", err)
	}
	return &ScheduleResult{Applied: true, Day: st.day}, nil
}

// UpdateSessionsPerDay stores the new target. Today's plan is regenerated
// only while no session has been logged.
func (h *ScheduleHandler) UpdateSessionsPerDay(ctx context.Context, cmd UpdateSessionsPerDayCommand) (*ScheduleResult, error) {
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("update_sessions_per_day: %w", err)
	}

	n := daily.ClampSessionsPerDay(cmd.SessionsPerDay)
	u := st.user
	u.Settings.SessionsPerDay = n
	if err := h.deps.Users.Set(ctx, u); err != nil {
		return nil, fmt.Errorf("update_sessions_per_day: %w", err)
	}

	day := st.day
	wasCompleted, doneBefore := day.IsCompleted, day.SessionsDone
	resized := false
	if day.SessionsDone == 0 && day.HasSchedule() {
		err := day.ResizeSchedule(n)
		if err != nil && !h.deps.skipped(ctx, "resize_schedule", err) {
			return nil, fmt.Errorf("update_sessions_per_day: %w", err)
		}
		resized = err == nil
	}
	day.RefreshCompletion(n)

	if resized || day.IsCompleted != wasCompleted || day.SessionsDone != doneBefore {
		if err := h.deps.Daily.Set(ctx, day); err != nil {
			return nil, fmt.Errorf("update_sessions_per_day: %w", err)
		}
	}
	return &ScheduleResult{Applied: true, Day: day}, nil
}

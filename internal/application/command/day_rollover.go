package command

import (
	"context"
	"log/slog"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAY ROLLOVER
// Runs when the stored day no longer matches the user's logical day: the old
// day goes to history, a fresh day replaces it and the streak is settled.
// ══════════════════════════════════════════════════════════════════════════════

// RolloverResult describes one rollover.
type RolloverResult struct {
	ArchivedDay    string
	NewDay         string
	SessionsDone   int
	Archived       bool
	PreviousStreak int
	CurrentStreak  int
	HighestStreak  int
}

// StreakExtended returns true if the streak grew.
func (r RolloverResult) StreakExtended() bool {
	return r.CurrentStreak > r.PreviousStreak
}

// StreakBroken returns true if a running streak was reset.
func (r RolloverResult) StreakBroken() bool {
	return r.PreviousStreak > 0 && r.CurrentStreak == 0
}

// rollover archives stored, persists a fresh day for today and settles the
// streak on u. The three records are written one after another.
func (d Deps) rollover(ctx context.Context, u *user.User, stored daily.Progress, today string) (*RolloverResult, error) {
	res := &RolloverResult{
		ArchivedDay:    stored.Date,
		NewDay:         today,
		SessionsDone:   stored.SessionsDone,
		PreviousStreak: u.Stats.CurrentStreak,
	}

	hist, err := d.History.Get(ctx)
	if err != nil {
		return nil, err
	}
	if hist.ArchiveDay(stored.Date, stored.SessionsDone) {
		if err := d.History.Set(ctx, hist); err != nil {
			return nil, err
		}
		res.Archived = true
	}

	if err := d.Daily.Set(ctx, daily.New(today)); err != nil {
		return nil, err
	}

	stats := u.Stats
	yesterday, _ := timeutil.PreviousDayKey(today)
	entry, found := hist.Entry(yesterday)
	gap, gapErr := timeutil.DaysBetweenKeys(stored.Date, today)
	switch {
	case found && entry.SessionsDone > 0:
		stats = stats.ExtendStreak()
	case stored.SessionsDone == 0, gapErr != nil, gap > 1:
		stats = stats.ResetStreak()
	}
	u.Stats = stats
	if err := d.Users.Set(ctx, *u); err != nil {
		return nil, err
	}

	res.CurrentStreak = stats.CurrentStreak
	res.HighestStreak = stats.HighestStreak

	d.Logger.InfoContext(ctx, "day rolled over",
		slog.String("archived_day", res.ArchivedDay),
		logger.DayKey(res.NewDay),
		slog.Int("sessions_done", res.SessionsDone),
		slog.Int("streak", res.CurrentStreak),
	)

	at := d.Clock.Now()
	events := []shared.Event{shared.DayRolledOverEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventDayRolledOver, u.Profile.ID, at),
		ArchivedDay:  res.ArchivedDay,
		NewDay:       res.NewDay,
		SessionsDone: res.SessionsDone,
	}}
	if res.StreakExtended() || res.StreakBroken() {
		eventType := shared.EventDailyStreakUpdated
		if res.StreakBroken() {
			eventType = shared.EventDailyStreakBroken
		}
		events = append(events, shared.StreakEvent{
			BaseEvent:      shared.NewBaseEvent(eventType, u.Profile.ID, at),
			PreviousStreak: res.PreviousStreak,
			CurrentStreak:  res.CurrentStreak,
			HighestStreak:  res.HighestStreak,
		})
	}
	d.publish(ctx, events...)

	return res, nil
}

// DayRolloverHandler checks the day boundary on demand: at start, on resume
// and after settings that move the boundary.
type DayRolloverHandler struct {
	deps Deps
}

// NewDayRolloverHandler creates a new DayRolloverHandler.
func NewDayRolloverHandler(deps Deps) *DayRolloverHandler {
	return &DayRolloverHandler{deps: deps.withDefaults()}
}

// Handle rolls the day over when needed. It returns nil when the stored day
// is current.
func (h *DayRolloverHandler) Handle(ctx context.Context) (*RolloverResult, error) {
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, err
	}
	return st.rollover, nil
}

// CheckDay reports whether a rollover happened.
func (h *DayRolloverHandler) CheckDay(ctx context.Context) (bool, error) {
	res, err := h.Handle(ctx)
	return res != nil, err
}

package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/progression"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOG SESSION COMMAND
// Records a completed workout: XP and levels, the day's progress, history and
// rep buckets, then the clan contribution.
// ══════════════════════════════════════════════════════════════════════════════

// LogSessionCommand contains the data to log a session.
type LogSessionCommand struct {
	// Exercises performed. Empty means the default routine for the session.
	Exercises []progression.ExerciseItem
}

// LogSessionResult contains the result of logging a session.
type LogSessionResult struct {
	// Applied is false when the day was already complete.
	Applied bool

	Session  daily.Session
	XPEarned int

	// PreviousLevel is the level before the award.
	PreviousLevel int
	LevelUp       progression.LevelUpResult

	Day   daily.Progress
	Stats progression.Stats

	// ClanID is set when the session counted towards a clan.
	ClanID string
}

// LogSessionHandler handles the LogSessionCommand.
type LogSessionHandler struct {
	deps Deps
}

// NewLogSessionHandler creates a new LogSessionHandler.
func NewLogSessionHandler(deps Deps) *LogSessionHandler {
	return &LogSessionHandler{deps: deps.withDefaults()}
}

// Handle executes the log session command.
func (h *LogSessionHandler) Handle(ctx context.Context, cmd LogSessionCommand) (*LogSessionResult, error) {
	st, err := h.deps.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("log_session: %w", err)
	}
	u, day := st.user, st.day
	perDay := u.Settings.SessionsPerDay

	exercises := cmd.Exercises
	if len(exercises) == 0 {
		exercises = progression.DefaultRoutine(day.SessionsDone + 1)
	}

	// 1. Schedule state
	session, err := day.LogSession(st.now, exercises, perDay)
	if err != nil {
		if h.deps.skipped(ctx, "log_session", err) {
			return &LogSessionResult{Day: day, Stats: u.Stats}, nil
		}
		return nil, fmt.Errorf("log_session: %w", err)
	}

	// 2. Progression
	xp := progression.SessionXP(u.Stats.Level)
	previousLevel := u.Stats.Level
	levelUp := progression.ApplyXP(u.Stats, xp)
	u.Stats = levelUp.Stats

	// 3. History and rep buckets
	hist, err := h.deps.History.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("log_session: %w", err)
	}
	hist.RecordSession(day.Date, day.SessionsDone, xp)
	hist.AddReps(session.Exercises)

	// 4. Persist, one record at a time
	if err := h.deps.Daily.Set(ctx, day); err != nil {
		return nil, fmt.Errorf("log_session: save day: %w", err)
	}
	if err := h.deps.History.Set(ctx, hist); err != nil {
		return nil, fmt.Errorf("log_session: save history: %w", err)
	}

	// 5. Clan contribution
	clanID, err := h.contribute(ctx, &u, xp)
	if err != nil {
		return nil, fmt.Errorf("log_session: %w", err)
	}

	if err := h.deps.Users.Set(ctx, u); err != nil {
		return nil, fmt.Errorf("log_session: save user: %w", err)
	}

	h.deps.Logger.InfoContext(ctx, "session logged",
		logger.DayKey(day.Date),
		logger.SessionID(session.SessionID),
		logger.XPAmount(xp),
		logger.UserLevel(u.Stats.Level),
		slog.Bool("day_completed", day.IsCompleted),
	)

	events := []shared.Event{shared.SessionLoggedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventSessionLogged, u.Profile.ID, st.now),
		DayKey:       day.Date,
		SessionID:    session.SessionID,
		XPEarned:     xp,
		SessionsDone: day.SessionsDone,
		DayCompleted: day.IsCompleted,
	}}
	if levelUp.LeveledUp() {
		events = append(events, shared.LevelUpEvent{
			BaseEvent:    shared.NewBaseEvent(shared.EventLevelUp, u.Profile.ID, st.now),
			OldLevel:     previousLevel,
			NewLevel:     u.Stats.Level,
			LevelsGained: levelUp.LevelsGained,
			CoinsAwarded: levelUp.CoinsAwarded(),
		})
	}
	h.deps.publish(ctx, events...)

	return &LogSessionResult{
		Applied:       true,
		Session:       session,
		XPEarned:      xp,
		PreviousLevel: previousLevel,
		LevelUp:       levelUp,
		Day:           day,
		Stats:         u.Stats,
		ClanID:        clanID,
	}, nil
}

// contribute credits xp to the user's clan. A membership pointing at a clan
// that no longer exists is repaired on u and nothing is credited.
func (h *LogSessionHandler) contribute(ctx context.Context, u *user.User, xp int) (string, error) {
	if u.Clan.Status == user.StatusNone {
		return "", nil
	}
	store, err := h.deps.Clans.Get(ctx)
	if err != nil {
		return "", err
	}
	resolved, _ := clan.ResolveMembership(u.Clan, store)
	u.Clan = resolved

	clanID, ok := resolved.CurrentClan()
	if !ok {
		return "", nil
	}
	if err := h.deps.engine.RecordContribution(&store, clanID, clan.ActorOf(*u), xp); err != nil {
		return "", err
	}
	if err := h.deps.Clans.Set(ctx, store); err != nil {
		return "", fmt.Errorf("save clans: %w", err)
	}
	return clanID, nil
}

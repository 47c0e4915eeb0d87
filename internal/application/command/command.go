// Package command contains write operations (CQRS - Commands).
//
// Every handler reads the records it needs, applies the pure domain rules and
// persists each touched record on its own. There is no cross-record
// transaction: callers serialize commands (see application.Service).
package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/analytics"
	"github.com/levelup-fitness/levelup-core/internal/domain/clan"
	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/idgen"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// Rules are the tunable game constants of the command side.
type Rules struct {
	// WeightLogCoins is credited for the first weight entry logged for today.
	WeightLogCoins int
}

// DefaultRules returns the stock game constants.
func DefaultRules() Rules {
	return Rules{WeightLogCoins: 10}
}

// Deps are shared by every command handler.
type Deps struct {
	Users   user.Repository
	Daily   daily.Repository
	History analytics.Repository
	Clans   clan.Repository

	Clock shared.Clock
	IDs   shared.IDGenerator

	// Notifier delivers session reminders. Nil mutes delivery; due slots are
	// still marked as fired.
	Notifier  notification.Notifier
	Publisher shared.EventPublisher
	Logger    *slog.Logger
	Rules     *Rules

	engine *clan.Engine
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = shared.SystemClock{}
	}
	if d.IDs == nil {
		d.IDs = idgen.UUID{}
	}
	if d.Publisher == nil {
		d.Publisher = shared.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Rules == nil {
		rules := DefaultRules()
		d.Rules = &rules
	}
	if d.engine == nil {
		d.engine = clan.NewEngine(d.Clock, d.IDs)
	}
	return d
}

// publish hands events to the bus. Subscribers never fail a command.
func (d Deps) publish(ctx context.Context, events ...shared.Event) {
	for _, e := range events {
		if err := d.Publisher.Publish(e); err != nil {
			d.Logger.WarnContext(ctx, "event not published",
				slog.String("event", string(e.EventType())),
				logger.Err(err),
			)
		}
	}
}

// skipped reports whether err only means the command does not apply in the
// current state, logging it as a no-op.
func (d Deps) skipped(ctx context.Context, op string, err error) bool {
	if !shared.IsPrecondition(err) {
		return false
	}
	d.Logger.InfoContext(ctx, "command skipped", logger.Operation(op), slog.String("reason", err.Error()))
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// CURRENT DAY
// ══════════════════════════════════════════════════════════════════════════════

// dayState is the user and the current-day record, brought up to the logical
// day at now.
type dayState struct {
	user     user.User
	day      daily.Progress
	now      time.Time
	rollover *RolloverResult
}

// load reads the user and the stored day. A stale day is rolled over first,
// so commands never write into a day that has already ended.
func (d Deps) load(ctx context.Context) (dayState, error) {
	now := d.Clock.Now()

	u, err := d.Users.Get(ctx)
	if err != nil {
		return dayState{}, err
	}
	stored, err := d.Daily.Get(ctx)
	if err != nil {
		return dayState{}, err
	}

	st := dayState{user: u, day: stored, now: now}
	today := u.Settings.TodayKey(now)
	if stored.Date == today {
		return st, nil
	}

	res, err := d.rollover(ctx, &st.user, stored, today)
	if err != nil {
		return dayState{}, err
	}
	st.day = daily.New(today)
	st.rollover = res
	return st, nil
}

package repository

import (
	"context"
	"time"

	"github.com/levelup-fitness/levelup-core/internal/domain/daily"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
	"github.com/levelup-fitness/levelup-core/pkg/timeutil"
)

// DailyRepository stores the current day under levelup_daily.
type DailyRepository struct {
	*kv.Repository[daily.Progress]
}

// NewDailyRepository creates the daily progress repository.
func NewDailyRepository(deps Deps) *DailyRepository {
	deps = deps.withDefaults()
	return &DailyRepository{kv.NewRepository(kv.Options[daily.Progress]{
		Key:     DailyKey,
		Version: DailyVersion,
		Store:   deps.Store,
		Default: func() daily.Progress {
			return daily.New(deps.Clock.Now().UTC().Format(timeutil.FormatDate))
		},
		Normalize: (*daily.Progress).Normalize,
		Validate:  daily.Progress.Validate,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
		Hooks:     deps.Hooks,
	})}
}

// Today returns the stored day when it is the logical day at now, otherwise a
// fresh day for today. Nothing is written; rollover persists the new day.
func (r *DailyRepository) Today(ctx context.Context, dayStartHour int, loc *time.Location, now time.Time) (daily.Progress, error) {
	stored, err := r.Peek(ctx)
	if err != nil {
		return stored, err
	}
	today := timeutil.TodayKey(dayStartHour, loc, now)
	if stored.Date == today {
		return stored, nil
	}
	return daily.New(today), nil
}

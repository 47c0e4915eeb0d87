package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/application/command"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/idgen"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/repository"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

var day1 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	clock *shared.FixedClock
	repos repository.Set
	cmds  command.Deps
	reads Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: shared.NewFixedClock(day1)}
	ids := idgen.NewSequence("id")
	f.repos = repository.NewSet(repository.Deps{
		Store:  kv.NewMemoryStore(),
		Clock:  f.clock,
		IDs:    ids,
		Logger: logger.Discard(),
	})
	f.cmds = command.Deps{
		Users:   f.repos.Users,
		Daily:   f.repos.Daily,
		History: f.repos.History,
		Clans:   f.repos.Clans,
		Clock:   f.clock,
		IDs:     ids,
		Logger:  logger.Discard(),
	}
	f.reads = Deps{
		Users:   f.repos.Users,
		Daily:   f.repos.Daily,
		History: f.repos.History,
		Clans:   f.repos.Clans,
		Clock:   f.clock,
		Logger:  logger.Discard(),
	}
	return f
}

func (f *fixture) logSession(t *testing.T) {
	t.Helper()
	_, err := command.NewLogSessionHandler(f.cmds).Handle(context.Background(), command.LogSessionCommand{})
	require.NoError(t, err)
}

func (f *fixture) startDay(t *testing.T, perDay int) {
	t.Helper()
	ctx := context.Background()
	_, err := command.NewScheduleHandler(f.cmds).UpdateSessionsPerDay(ctx, command.UpdateSessionsPerDayCommand{SessionsPerDay: perDay})
	require.NoError(t, err)
	_, err = command.NewScheduleHandler(f.cmds).StartDay(ctx, command.StartDayCommand{StartTime: "09:00", IntervalMinutes: 30})
	require.NoError(t, err)
}

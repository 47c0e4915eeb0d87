package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/idgen"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/kv"
	"github.com/levelup-fitness/levelup-core/internal/infrastructure/persistence/repository"
	"github.com/levelup-fitness/levelup-core/pkg/logger"
)

// 2024-03-01 is a Friday.
var day1 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type recordingBus struct {
	events []shared.Event
}

func (b *recordingBus) Publish(e shared.Event) error {
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) ofType(t shared.EventType) []shared.Event {
	var out []shared.Event
	for _, e := range b.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

type harness struct {
	deps      Deps
	repos     repository.Set
	clock     *shared.FixedClock
	bus       *recordingBus
	sent      []notification.Message
	notifyErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock: shared.NewFixedClock(day1),
		bus:   &recordingBus{},
	}
	ids := idgen.NewSequence("id")
	h.repos = repository.NewSet(repository.Deps{
		Store:  kv.NewMemoryStore(),
		Clock:  h.clock,
		IDs:    ids,
		Logger: logger.Discard(),
	})
	h.deps = Deps{
		Users:     h.repos.Users,
		Daily:     h.repos.Daily,
		History:   h.repos.History,
		Clans:     h.repos.Clans,
		Clock:     h.clock,
		IDs:       ids,
		Publisher: h.bus,
		Logger:    logger.Discard(),
		Notifier: notification.NotifierFunc(func(_ context.Context, title, body string) error {
			h.sent = append(h.sent, notification.Message{Title: title, Body: body})
			return h.notifyErr
		}),
	}
	return h
}

func (h *harness) user(t *testing.T) user.User {
	t.Helper()
	u, err := h.repos.Users.Get(context.Background())
	require.NoError(t, err)
	return u
}

func (h *harness) updateUser(t *testing.T, fn func(*user.User)) {
	t.Helper()
	_, err := h.repos.Users.Update(context.Background(), func(u *user.User) error {
		fn(u)
		return nil
	})
	require.NoError(t, err)
}

func (h *harness) logSession(t *testing.T) *LogSessionResult {
	t.Helper()
	res, err := NewLogSessionHandler(h.deps).Handle(context.Background(), LogSessionCommand{})
	require.NoError(t, err)
	return res
}

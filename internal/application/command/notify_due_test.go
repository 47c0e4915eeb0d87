package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/domain/notification"
	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
)

func TestNotifyDue_FiresOncePerSlot(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)
	handler := NewNotifyDueHandler(h.deps)
	ctx := context.Background()

	fired, err := handler.NotifyDue(ctx)
	require.NoError(t, err)
	assert.False(t, fired, "nothing is due at 08:00")

	h.clock.Set(at(9, 0))
	res, err := handler.Handle(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.SessionID)
	assert.True(t, res.Delivered)
	require.Len(t, h.sent, 1)
	assert.Equal(t, notification.SessionDue(1), h.sent[0])
	assert.Equal(t, "It's time for Session 1! Drop and give me a set!", h.sent[0].Body)

	fired, err = handler.NotifyDue(ctx)
	require.NoError(t, err)
	assert.False(t, fired)

	h.clock.Advance(30 * time.Minute)
	res, err = handler.Handle(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.SessionID)
	assert.Len(t, h.sent, 2)
}

func TestNotifyDue_EarliestFirst(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)
	h.clock.Set(at(10, 5))
	handler := NewNotifyDueHandler(h.deps)

	var order []int
	for {
		res, err := handler.Handle(context.Background())
		require.NoError(t, err)
		if res == nil {
			break
		}
		order = append(order, res.SessionID)
	}
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestNotifyDue_FailedDeliveryStillMarksSlot(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 2)
	h.notifyErr = errors.New("permission denied")
	h.clock.Set(at(9, 0))
	handler := NewNotifyDueHandler(h.deps)

	res, err := handler.Handle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Delivered)

	fired, err := handler.NotifyDue(context.Background())
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Len(t, h.sent, 1)

	due := h.bus.ofType(shared.EventSessionDue)
	require.Len(t, due, 1)
	assert.False(t, due[0].(shared.SessionDueEvent).Delivered)
}

func TestNotifyDue_CompletedSlotsNeverFire(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 2)
	h.logSession(t)
	h.clock.Set(at(9, 45))

	res, err := NewNotifyDueHandler(h.deps).Handle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.SessionID)
}

func TestNotifyDue_MutedWithoutNotifier(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 2)
	h.deps.Notifier = nil
	h.clock.Set(at(9, 0))

	res, err := NewNotifyDueHandler(h.deps).Handle(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Muted)
	assert.False(t, res.Delivered)
	assert.Empty(t, h.sent)

	day, err := h.repos.Daily.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, day.Schedule[0].NotificationSent)
}

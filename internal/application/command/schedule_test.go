package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-fitness/levelup-core/internal/domain/shared"
	"github.com/levelup-fitness/levelup-core/internal/domain/user"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

func (h *harness) startDay(t *testing.T, perDay int) {
	t.Helper()
	h.updateUser(t, func(u *user.User) { u.Settings.SessionsPerDay = perDay })
	res, err := NewScheduleHandler(h.deps).StartDay(context.Background(), StartDayCommand{StartTime: "09:00", IntervalMinutes: 30})
	require.NoError(t, err)
	require.True(t, res.Applied)
}

func TestStartDay_GeneratesSlots(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)

	day, err := h.repos.Daily.Get(context.Background())
	require.NoError(t, err)
	require.Len(t, day.Schedule, 3)
	for i, want := range []time.Time{at(9, 0), at(9, 30), at(10, 0)} {
		assert.Equal(t, i+1, day.Schedule[i].SessionID)
		assert.True(t, want.Equal(day.Schedule[i].TargetTime), "slot %d at %s", i+1, day.Schedule[i].TargetTime)
		assert.False(t, day.Schedule[i].NotificationSent)
	}
}

func TestStartDay_OnlyOncePerDay(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)

	res, err := NewScheduleHandler(h.deps).StartDay(context.Background(), StartDayCommand{StartTime: "11:00", IntervalMinutes: 10})
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.True(t, at(9, 0).Equal(res.Day.Schedule[0].TargetTime))
}

func TestStartDay_Validation(t *testing.T) {
	h := newHarness(t)
	handler := NewScheduleHandler(h.deps)

	_, err := handler.StartDay(context.Background(), StartDayCommand{StartTime: "9am", IntervalMinutes: 30})
	assert.True(t, errors.Is(err, shared.ErrInvalidStartTime))

	_, err = handler.StartDay(context.Background(), StartDayCommand{StartTime: "09:00"})
	assert.True(t, shared.IsValidation(err))
}

func TestRescheduleSlot(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)
	h.clock.Set(at(9, 1))
	_, err := NewNotifyDueHandler(h.deps).Handle(context.Background())
	require.NoError(t, err)

	handler := NewScheduleHandler(h.deps)
	res, err := handler.RescheduleSlot(context.Background(), RescheduleSlotCommand{SessionID: 1, Time: "12:15"})
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.True(t, at(12, 15).Equal(res.Day.Schedule[0].TargetTime))
	assert.False(t, res.Day.Schedule[0].NotificationSent)

	_, err = handler.RescheduleSlot(context.Background(), RescheduleSlotCommand{SessionID: 9, Time: "12:15"})
	assert.True(t, shared.IsNotFound(err))
}

func TestRescheduleSlot_CompletedIsNoOp(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)
	h.logSession(t)

	res, err := NewScheduleHandler(h.deps).RescheduleSlot(context.Background(), RescheduleSlotCommand{SessionID: 1, Time: "12:00"})
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestUpdateSessionsPerDay_ResizesUntouchedDay(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)

	res, err := NewScheduleHandler(h.deps).UpdateSessionsPerDay(context.Background(), UpdateSessionsPerDayCommand{SessionsPerDay: 5})
	require.NoError(t, err)
	require.Len(t, res.Day.Schedule, 5)
	assert.True(t, at(11, 0).Equal(res.Day.Schedule[4].TargetTime))
	assert.Equal(t, 5, h.user(t).Settings.SessionsPerDay)
}

func TestUpdateSessionsPerDay_KeepsStartedDay(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 3)
	h.logSession(t)

	res, err := NewScheduleHandler(h.deps).UpdateSessionsPerDay(context.Background(), UpdateSessionsPerDayCommand{SessionsPerDay: 1})
	require.NoError(t, err)
	assert.Len(t, res.Day.Schedule, 3)
	assert.True(t, res.Day.IsCompleted)

	day, err := h.repos.Daily.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, day.IsCompleted)
}

func TestUpdateSessionsPerDay_CapsSessionsDone(t *testing.T) {
	h := newHarness(t)
	h.startDay(t, 4)
	h.logSession(t)
	h.logSession(t)
	h.logSession(t)

	res, err := NewScheduleHandler(h.deps).UpdateSessionsPerDay(context.Background(), UpdateSessionsPerDayCommand{SessionsPerDay: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Day.SessionsDone)
	assert.True(t, res.Day.IsCompleted)

	day, err := h.repos.Daily.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, day.SessionsDone)
	assert.True(t, day.IsCompleted)
}

func TestUpdateSessionsPerDay_Clamps(t *testing.T) {
	h := newHarness(t)
	_, err := NewScheduleHandler(h.deps).UpdateSessionsPerDay(context.Background(), UpdateSessionsPerDayCommand{SessionsPerDay: 99})
	require.NoError(t, err)
	assert.Equal(t, 50, h.user(t).Settings.SessionsPerDay)
}

package shared

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesKind(t *testing.T) {
	assert.True(t, errors.Is(ErrClanNotFound, ErrNotFound))
	assert.True(t, IsNotFound(ErrSlotNotFound))
	assert.False(t, IsNotFound(ErrDayCompleted))
}

func TestDomainError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapError("storage", "Set", ErrStorage, "write failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Equal(t, "storage.Set: write failed: disk full", err.Error())
}

func TestClassification(t *testing.T) {
	assert.True(t, IsValidation(ErrInvalidWeight))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", ErrInvalidClanTag)))
	assert.True(t, IsPrecondition(ErrScheduleExists))
	assert.True(t, IsPrecondition(ErrNotClanLeader))
	assert.True(t, IsPrecondition(ErrDayCompleted))
	assert.False(t, IsPrecondition(ErrInvalidWeight))
}

func TestFixedClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := NewFixedClock(start)

	clock.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), clock.Now())

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}

func TestStreakEvent_Broken(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	broken := StreakEvent{BaseEvent: NewBaseEvent(EventDailyStreakBroken, "u1", at)}
	kept := StreakEvent{BaseEvent: NewBaseEvent(EventDailyStreakUpdated, "u1", at)}

	assert.True(t, broken.Broken())
	assert.False(t, kept.Broken())
	assert.Equal(t, at, broken.OccurredAt())
}

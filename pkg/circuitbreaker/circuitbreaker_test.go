package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("down")

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := New("chat",
		WithFailureThreshold(2),
		WithCoolDown(time.Minute),
		WithClock(clock.Now),
		WithOnStateChange(func(_ string, from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		}),
	)
	ctx := context.Background()

	assert.ErrorIs(t, b.Execute(ctx, fail), errDown)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Execute(ctx, fail), errDown)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.True(t, IsRejection(err))
	assert.False(t, called)

	clock.now = clock.now.Add(time.Minute)
	require.NoError(t, b.Execute(ctx, ok))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, transitions)
}

func TestBreaker_SuccessResetsFailureRun(t *testing.T) {
	b := New("chat", WithFailureThreshold(2))
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	require.NoError(t, b.Execute(ctx, ok))
	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_FailedTrialReopens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("chat", WithFailureThreshold(1), WithCoolDown(time.Second), WithClock(clock.Now))
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	clock.now = clock.now.Add(time.Second)
	assert.ErrorIs(t, b.Execute(ctx, fail), errDown)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(ctx, ok), ErrOpen, "cool-down restarts from the failed trial")
}

func TestBreaker_OneTrialAtATime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("chat", WithFailureThreshold(1), WithCoolDown(time.Second), WithClock(clock.Now))
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	clock.now = clock.now.Add(time.Second)

	err := b.Execute(ctx, func(ctx context.Context) error {
		assert.ErrorIs(t, b.Execute(ctx, ok), ErrTrialInFlight)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IsFailureFilter(t *testing.T) {
	b := New("chat",
		WithFailureThreshold(1),
		WithIsFailure(func(err error) bool { return !errors.Is(err, context.Canceled) }),
	)

	_ = b.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "chat", b.Name())
}

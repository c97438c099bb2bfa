package schedule_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/schedule"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestScheduler(clock *fakeClock) *schedule.Scheduler {
	return schedule.NewScheduler(
		schedule.WithClock(clock.Now),
		schedule.WithCheckInterval(2*time.Millisecond),
		schedule.WithSchedulerLogger(logger.Discard()),
	)
}

func TestScheduler_AddTask(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)}
	s := newTestScheduler(clock)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.AddTask("daily", schedule.DailyAt(9, 0), noop))
	err := s.AddTask("daily", schedule.DailyAt(9, 0), noop)
	assert.ErrorIs(t, err, schedule.ErrTaskAlreadyRegistered)

	assert.ErrorIs(t, s.AddTask("", schedule.DailyAt(9, 0), noop), schedule.ErrInvalidTask)
	assert.ErrorIs(t, s.AddTask("x", nil, noop), schedule.ErrInvalidTask)
	assert.ErrorIs(t, s.AddTask("x", schedule.DailyAt(9, 0), nil), schedule.ErrInvalidTask)

	assert.Equal(t, []string{"daily"}, s.Tasks())
	next, ok := s.NextRun("daily")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC), next)
}

func TestScheduler_StartWithoutTasks(t *testing.T) {
	t.Parallel()

	s := schedule.NewScheduler()
	assert.ErrorIs(t, s.Start(context.Background()), schedule.ErrNoTasks)
}

func TestScheduler_RunsDueTasks(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, time.October, 15, 8, 59, 0, 0, time.UTC)}
	s := newTestScheduler(clock)

	var calls atomic.Int32
	require.NoError(t, s.AddTask("daily", schedule.DailyAt(9, 0), func(context.Context) error {
		calls.Add(1)
		return errors.New("failures are logged, not fatal")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	clock.Set(time.Date(2026, time.October, 15, 9, 0, 1, 0, time.UTC))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	next, _ := s.NextRun("daily")
	assert.Equal(t, time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC), next)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.October, 15, 10, 0, 30, 0, time.UTC)
	clock := &fakeClock{now: start}
	s := newTestScheduler(clock)

	release := make(chan struct{})
	var calls atomic.Int32
	require.NoError(t, s.AddTask("slow", schedule.EveryMinutes(1), func(context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	clock.Set(start.Add(time.Minute))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	clock.Set(start.Add(3 * time.Minute))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.ErrorIs(t, s.Run(context.Background(), "slow"), schedule.ErrTaskBusy)

	close(release)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestScheduler_Run(t *testing.T) {
	t.Parallel()

	s := schedule.NewScheduler(schedule.WithSchedulerLogger(logger.Discard()))
	ran := false
	require.NoError(t, s.AddTask("manual", schedule.HourlyAt(0), func(context.Context) error {
		ran = true
		return nil
	}))

	require.NoError(t, s.Run(context.Background(), "manual"))
	assert.True(t, ran)
	assert.ErrorIs(t, s.Run(context.Background(), "missing"), schedule.ErrTaskNotFound)
}

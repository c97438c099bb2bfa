package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
)

// TaskFunc is the body of a periodic task.
type TaskFunc func(ctx context.Context) error

// Scheduler runs registered tasks when their schedules come due.
type Scheduler struct {
	tasks    map[string]*task
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
	started  atomic.Bool
	wg       sync.WaitGroup
	mu       sync.RWMutex
}

type task struct {
	name     string
	schedule Schedule
	fn       TaskFunc
	nextRun  time.Time
	running  atomic.Bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		tasks:    make(map[string]*task),
		interval: time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask registers fn to run on sched under a unique name.
func (s *Scheduler) AddTask(name string, sched Schedule, fn TaskFunc) error {
	if name == "" || sched == nil || fn == nil {
		return ErrInvalidTask
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("%w: %s", ErrTaskAlreadyRegistered, name)
	}

	t := &task{name: name, schedule: sched, fn: fn, nextRun: sched.Next(s.now())}
	s.tasks[name] = t

	s.logger.Info("registered periodic task",
		logger.Task(name),
		slog.String("schedule", sched.String()),
		slog.Time("next_run", t.nextRun))

	return nil
}

// Tasks returns the registered task names in sorted order.
func (s *Scheduler) Tasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tasks))
	for name := range s.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextRun reports when the named task fires next.
func (s *Scheduler) NextRun(name string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[name]
	if !ok {
		return time.Time{}, false
	}
	return t.nextRun, true
}

// Start checks for due tasks every check interval until ctx is done, then
// waits for in-flight runs and returns ctx.Err().
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.RLock()
	count := len(s.tasks)
	s.mu.RUnlock()
	if count == 0 {
		return ErrNoTasks
	}
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.started.Store(false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", logger.Count(count), slog.Duration("check_interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down, waiting for running tasks")
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.dispatchDue(ctx, s.now())
		}
	}
}

// Run executes the named task synchronously, outside its schedule.
// It fails with ErrTaskBusy if the task is in flight.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.RLock()
	t, ok := s.tasks[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	if !t.running.CompareAndSwap(false, true) {
		return ErrTaskBusy
	}
	defer t.running.Store(false)
	return t.fn(ctx)
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	due := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if now.Before(t.nextRun) {
			continue
		}
		t.nextRun = t.schedule.Next(now)
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		if !t.running.CompareAndSwap(false, true) {
			s.logger.Debug("skipping periodic task, previous run still in flight", logger.Task(t.name))
			continue
		}

		s.wg.Add(1)
		go func(t *task) {
			defer s.wg.Done()
			defer t.running.Store(false)
			s.execute(ctx, t)
		}(t)
	}
}

func (s *Scheduler) execute(ctx context.Context, t *task) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("periodic task panicked", logger.Task(t.name), slog.Any("panic", r))
		}
	}()

	if err := t.fn(ctx); err != nil {
		s.logger.Error("periodic task failed",
			logger.Task(t.name),
			logger.Duration(time.Since(start)),
			logger.Error(err))
		return
	}

	s.logger.Debug("periodic task completed", logger.Task(t.name), logger.Duration(time.Since(start)))
}

package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/pkg/schedule"
	"github.com/dmitrymomot/tutorhub/svc/tutoring"
)

// Task names registered on the scheduler.
const (
	TaskQuarterHourly = "reminders.quarter_hourly"
	TaskHourly        = "reminders.hourly"
	TaskDaily         = "reminders.daily"
	TaskCleanup       = "notifications.cleanup"
)

// Reminder creates reminder notifications for the given participants of a
// booking, or for both when none are given. Implemented by tutoring.Notifier.
type Reminder interface {
	ClassReminder(ctx context.Context, b tutoring.Booking, lead notifications.ReminderLead, recipients ...string) int
}

// Cleaner deletes old read notifications. Implemented by notifications.Manager.
type Cleaner interface {
	Cleanup(ctx context.Context, daysOld int) (int64, error)
}

// Service drives reminders and cleanup from a scheduler.
type Service struct {
	bookings    tutoring.Bookings
	reminder    Reminder
	cleaner     Cleaner
	scheduler   *schedule.Scheduler
	guard       Guard
	loc         *time.Location
	now         func() time.Time
	cleanupDays int
	logger      *slog.Logger

	initialized bool
	mu          sync.Mutex
}

type Option func(*Service)

// WithGuard enables duplicate suppression.
func WithGuard(g Guard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

// WithLocation sets the zone booking dates and start times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithCleanupDays(days int) Option {
	return func(s *Service) {
		s.cleanupDays = days
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithScheduler replaces the default scheduler, whose clock follows the
// service clock and location.
func WithScheduler(sch *schedule.Scheduler) Option {
	return func(s *Service) {
		s.scheduler = sch
	}
}

func NewService(bookings tutoring.Bookings, reminder Reminder, cleaner Cleaner, opts ...Option) *Service {
	s := &Service{
		bookings:    bookings,
		reminder:    reminder,
		cleaner:     cleaner,
		loc:         time.Local,
		now:         time.Now,
		cleanupDays: 30,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("reminder"))

	if s.scheduler == nil {
		s.scheduler = schedule.NewScheduler(
			schedule.WithSchedulerLogger(s.logger),
			schedule.WithClock(s.localNow),
		)
	}
	return s
}

func (s *Service) localNow() time.Time {
	return s.now().In(s.loc)
}

// Init registers the periodic tasks. Calling it again is a no-op.
func (s *Service) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	tasks := []struct {
		name  string
		sched schedule.Schedule
		fn    schedule.TaskFunc
	}{
		{TaskQuarterHourly, schedule.EveryMinutes(15), s.QuarterHourlyTick},
		{TaskHourly, schedule.HourlyAt(0), s.HourlyTick},
		{TaskDaily, schedule.DailyAt(9, 0), s.DailyTick},
		{TaskCleanup, schedule.WeeklyOn(time.Sunday, 2, 0), s.CleanupTick},
	}
	for _, t := range tasks {
		if err := s.scheduler.AddTask(t.name, t.sched, t.fn); err != nil {
			return fmt.Errorf("failed to register %s: %w", t.name, err)
		}
	}

	s.initialized = true
	s.logger.Info("reminder tasks registered", logger.Count(len(tasks)))
	return nil
}

// Start initializes if needed and runs the scheduler until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	if err := s.Init(); err != nil {
		return err
	}
	return s.scheduler.Start(ctx)
}

// Run executes one registered task immediately.
func (s *Service) Run(ctx context.Context, task string) error {
	return s.scheduler.Run(ctx, task)
}

// QuarterHourlyTick sends 1h reminders for classes starting in (0.8h, 1.2h].
func (s *Service) QuarterHourlyTick(ctx context.Context) error {
	return s.scanUpcoming(ctx, TaskQuarterHourly, func(until time.Duration) bool {
		hours := until.Hours()
		return hours > 0.8 && hours <= 1.2
	})
}

// HourlyTick sends 1h reminders for classes starting in (45m, 75m].
func (s *Service) HourlyTick(ctx context.Context) error {
	return s.scanUpcoming(ctx, TaskHourly, func(until time.Duration) bool {
		minutes := until.Minutes()
		return minutes > 45 && minutes <= 75
	})
}

// DailyTick sends 24h reminders for every confirmed booking dated tomorrow.
func (s *Service) DailyTick(ctx context.Context) error {
	tomorrow := tutoring.DayOf(s.localNow()).AddDate(0, 0, 1)
	bookings, err := s.bookings.ConfirmedBetween(ctx, tomorrow, tomorrow.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("failed to load tomorrow's bookings: %w", err)
	}

	sent := 0
	for _, b := range bookings {
		sent += s.remind(ctx, b, notifications.Lead24Hours)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "daily reminders processed",
		logger.Task(TaskDaily),
		slog.Int("bookings", len(bookings)),
		logger.Count(sent),
	)
	return nil
}

// CleanupTick deletes old read notifications.
func (s *Service) CleanupTick(ctx context.Context) error {
	_, err := s.cleaner.Cleanup(ctx, s.cleanupDays)
	return err
}

// scanUpcoming checks confirmed bookings from the start of today through the
// next 24 hours and sends a 1h reminder where due reports true.
func (s *Service) scanUpcoming(ctx context.Context, task string, due func(until time.Duration) bool) error {
	now := s.localNow()
	from := tutoring.DayOf(now)
	to := tutoring.DayOf(now.Add(24*time.Hour)).AddDate(0, 0, 1)

	bookings, err := s.bookings.ConfirmedBetween(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to load upcoming bookings: %w", err)
	}

	sent := 0
	for _, b := range bookings {
		startsAt, err := b.StartsAt(s.loc)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "skipping booking with invalid start time",
				logger.Task(task),
				logger.BookingID(b.ID),
				logger.Error(err),
			)
			continue
		}
		if due(startsAt.Sub(now)) {
			sent += s.remind(ctx, b, notifications.Lead1Hour)
		}
	}

	s.logger.LogAttrs(ctx, slog.LevelDebug, "upcoming bookings scanned",
		logger.Task(task),
		slog.Int("bookings", len(bookings)),
		logger.Count(sent),
	)
	return nil
}

// remind sends the reminder to every participant whose marker is not set yet
// and returns the number of notifications created.
func (s *Service) remind(ctx context.Context, b tutoring.Booking, lead notifications.ReminderLead) int {
	created, skipped := s.deliver(ctx, b, lead, false)
	if skipped > 0 {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "reminder already sent",
			logger.BookingID(b.ID),
			logger.Lead(string(lead)),
			logger.Count(skipped),
		)
	}
	return created
}

// deliver creates one reminder per participant. With a guard every
// participant has its own marker; a marker acquired here is released when
// that participant's reminder could not be created, so a later tick retries
// only the participant that missed out. force sends even when the marker is
// already set.
func (s *Service) deliver(ctx context.Context, b tutoring.Booking, lead notifications.ReminderLead, force bool) (created, skipped int) {
	if s.guard == nil {
		created = s.reminder.ClassReminder(ctx, b, lead)
		if created == 0 {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to send reminder",
				logger.BookingID(b.ID),
				logger.Lead(string(lead)),
			)
		}
		return created, 0
	}

	for _, recipient := range []string{b.StudentID, b.TeacherID} {
		fresh, err := s.guard.Acquire(ctx, b.ID, lead, recipient)
		switch {
		case err != nil:
			s.logger.LogAttrs(ctx, slog.LevelWarn, "reminder guard unavailable, sending anyway",
				logger.BookingID(b.ID),
				logger.UserID(recipient),
				logger.Lead(string(lead)),
				logger.Error(err),
			)
		case !fresh && !force:
			skipped++
			continue
		}

		if s.reminder.ClassReminder(ctx, b, lead, recipient) > 0 {
			created++
			continue
		}

		s.logger.LogAttrs(ctx, slog.LevelError, "failed to send reminder",
			logger.BookingID(b.ID),
			logger.UserID(recipient),
			logger.Lead(string(lead)),
		)
		if err != nil || !fresh {
			continue
		}
		if err := s.guard.Release(ctx, b.ID, lead, recipient); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to release reminder marker",
				logger.BookingID(b.ID),
				logger.UserID(recipient),
				logger.Error(err),
			)
		}
	}
	return created, skipped
}

// SendManual sends a reminder for one confirmed booking right away.
//
// A non-empty requester must be the booking's student or teacher, otherwise
// tutoring.ErrBookingNotFound is returned. Such requests go through the guard
// like a scheduled tick and fail with ErrReminderAlreadySent once every
// participant has been reminded. An empty requester is an operator request:
// markers are recorded but not checked.
func (s *Service) SendManual(ctx context.Context, requester, bookingID string, lead notifications.ReminderLead) (int, error) {
	if !lead.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLead, lead)
	}

	b, err := s.bookings.Booking(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if requester != "" && requester != b.StudentID && requester != b.TeacherID {
		return 0, tutoring.ErrBookingNotFound
	}
	if b.Status != tutoring.BookingConfirmed {
		return 0, ErrBookingNotConfirmed
	}

	created, skipped := s.deliver(ctx, b, lead, requester == "")
	if created == 0 && skipped > 0 {
		return 0, ErrReminderAlreadySent
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "manual reminder sent",
		logger.BookingID(b.ID),
		logger.UserID(requester),
		logger.Lead(string(lead)),
		logger.Count(created),
	)
	return created, nil
}

// Stats counts confirmed bookings in the upcoming windows.
type Stats struct {
	Today       int       `json:"today"`
	Tomorrow    int       `json:"tomorrow"`
	NextWeek    int       `json:"nextWeek"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Stats counts confirmed bookings scheduled today, tomorrow and within the
// next 7 days starting today.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.localNow()
	today := tutoring.DayOf(now)

	windows := [...][2]time.Time{
		{today, today.AddDate(0, 0, 1)},
		{today.AddDate(0, 0, 1), today.AddDate(0, 0, 2)},
		{today, today.AddDate(0, 0, 7)},
	}
	var counts [3]int
	for i, w := range windows {
		n, err := s.bookings.CountConfirmedBetween(ctx, w[0], w[1])
		if err != nil {
			return Stats{}, fmt.Errorf("failed to count bookings: %w", err)
		}
		counts[i] = n
	}

	return Stats{
		Today:       counts[0],
		Tomorrow:    counts[1],
		NextWeek:    counts[2],
		GeneratedAt: now,
	}, nil
}

package tutoring_test

import (
	"time"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/svc/tutoring"
)

var (
	student = tutoring.User{ID: "student-1", Name: "Anna", Email: "anna@example.com", Role: tutoring.RoleStudent}
	teacher = tutoring.User{ID: "teacher-1", Name: "Tom", Email: "tom@example.com", Role: tutoring.RoleTeacher}
)

func testBooking() tutoring.Booking {
	return tutoring.Booking{
		ID:        "booking-1",
		StudentID: student.ID,
		TeacherID: teacher.ID,
		Subject:   "Maths",
		Date:      time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		Duration:  60,
		Status:    tutoring.BookingPending,
		Amount:    40,
	}
}

type fixture struct {
	store    *tutoring.MemoryStore
	storage  *notifications.MemoryStorage
	manager  *notifications.Manager
	notifier *tutoring.Notifier
}

func newFixture() *fixture {
	store := tutoring.NewMemoryStore()
	store.PutUser(student)
	store.PutUser(teacher)

	storage := notifications.NewMemoryStorage()
	manager := notifications.NewManager(storage, notifications.WithManagerLogger(logger.Discard()))
	return &fixture{
		store:    store,
		storage:  storage,
		manager:  manager,
		notifier: tutoring.NewNotifier(manager, store, store, tutoring.WithNotifierLogger(logger.Discard())),
	}
}

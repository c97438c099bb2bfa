package notifications_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	api "github.com/dmitrymomot/tutorhub/modules/notifications"
	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/svc/reminder"
	"github.com/dmitrymomot/tutorhub/svc/tutoring"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type MockReminders struct {
	mock.Mock
}

func (m *MockReminders) SendManual(ctx context.Context, requester, bookingID string, lead notifications.ReminderLead) (int, error) {
	args := m.Called(ctx, requester, bookingID, lead)
	return args.Int(0), args.Error(1)
}

func (m *MockReminders) Stats(ctx context.Context) (reminder.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(reminder.Stats), args.Error(1)
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Meta  map[string]any   `json:"meta"`
	Error *api.ErrorDetail `json:"error"`
}

type fixture struct {
	manager   *notifications.Manager
	reminders *MockReminders
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testNow
	manager := notifications.NewManager(notifications.NewMemoryStorage(),
		notifications.WithManagerLogger(logger.Discard()),
		notifications.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	reminders := &MockReminders{}
	svc := api.NewService(manager,
		api.WithLogger(logger.Discard()),
		api.WithReminders(reminders),
	)
	return &fixture{
		manager:   manager,
		reminders: reminders,
		handler:   withIdentity(svc.Handle()),
	}
}

func withIdentity(h http.Handler) http.Handler {
	return api.TrustedRoleHeader("X-User-Role")(api.TrustedHeader("X-User-ID")(h))
}

func (f *fixture) seed(t *testing.T, recipient string, category notifications.Category) *notifications.Notification {
	t.Helper()
	typ := notifications.TypeGeneral
	if category == notifications.CategoryMessage {
		typ = notifications.TypeMessage
	}
	n, err := f.manager.Create(context.Background(), notifications.CreateParams{
		Recipient: recipient,
		Title:     "Title",
		Message:   "Body",
		Type:      typ,
		Category:  category,
	})
	require.NoError(t, err)
	return n
}

func (f *fixture) do(t *testing.T, method, target, user, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return serve(t, f.handler, method, target, user, "", body)
}

func (f *fixture) asOperator(t *testing.T, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return serve(t, f.handler, method, target, "ops-1", api.RoleOperator, "")
}

func serve(t *testing.T, h http.Handler, method, target, user, role, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestService_RequiresIdentity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "unauthorized", env.Error.Code)
}

func TestService_List(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	first := f.seed(t, "u1", notifications.CategorySystem)
	second := f.seed(t, "u1", notifications.CategoryMessage)
	f.seed(t, "u2", notifications.CategorySystem)

	t.Run("newest first with meta", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/", "u1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var items []notifications.Notification
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 2)
		assert.Equal(t, second.ID, items[0].ID)
		assert.Equal(t, first.ID, items[1].ID)
		assert.EqualValues(t, 2, env.Meta["total"])
		assert.EqualValues(t, 2, env.Meta["unreadCount"])
		assert.EqualValues(t, 1, env.Meta["totalPages"])
	})

	t.Run("category filter", func(t *testing.T) {
		rec, env := f.do(t, http.MethodGet, "/?category=message&limit=5", "u1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var items []notifications.Notification
		require.NoError(t, json.Unmarshal(env.Data, &items))
		require.Len(t, items, 1)
		assert.Equal(t, second.ID, items[0].ID)
		assert.EqualValues(t, 5, env.Meta["limit"])
	})

	t.Run("bad query", func(t *testing.T) {
		for _, q := range []string{"?page=x", "?limit=ten", "?unreadOnly=maybe", "?category=spam", "?page=9223372036854775807"} {
			rec, env := f.do(t, http.MethodGet, "/"+q, "u1", "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
			require.NotNil(t, env.Error, q)
		}
	})
}

func TestService_ReadFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	mine := f.seed(t, "u1", notifications.CategorySystem)
	other := f.seed(t, "u1", notifications.CategorySystem)
	foreign := f.seed(t, "u2", notifications.CategorySystem)

	rec, _ := f.do(t, http.MethodPatch, "/read", "u1", `{"ids":["`+mine.ID+`","`+foreign.ID+`"]}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, env := f.do(t, http.MethodGet, "/unread-count", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unreadCount":1}`, string(env.Data))

	n, err := f.manager.Get(context.Background(), "u2", foreign.ID)
	require.NoError(t, err)
	assert.False(t, n.IsRead)

	rec, _ = f.do(t, http.MethodPatch, "/read", "u1", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = f.do(t, http.MethodPatch, "/read", "u1", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/read-all", "u1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	n, err = f.manager.Get(context.Background(), "u1", other.ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
}

func TestService_GetAndDelete(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	mine := f.seed(t, "u1", notifications.CategorySystem)

	rec, env := f.do(t, http.MethodGet, "/"+mine.ID, "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got notifications.Notification
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, mine.ID, got.ID)

	rec, env = f.do(t, http.MethodGet, "/"+mine.ID, "u2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)

	rec, _ = f.do(t, http.MethodDelete, "/"+mine.ID, "u2", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := f.manager.Get(context.Background(), "u1", mine.ID)
	require.NoError(t, err)

	rec, _ = f.do(t, http.MethodDelete, "/"+mine.ID, "u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err = f.manager.Get(context.Background(), "u1", mine.ID)
	assert.ErrorIs(t, err, notifications.ErrNotificationNotFound)
}

func TestService_Reminders(t *testing.T) {
	t.Parallel()

	t.Run("participant request defaults to 24h", func(t *testing.T) {
		f := newFixture(t)
		f.reminders.On("SendManual", mock.Anything, "student-1", "b1", notifications.Lead24Hours).Return(2, nil).Once()

		rec, env := f.do(t, http.MethodPost, "/reminders/b1", "student-1", "")
		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"created":2}`, string(env.Data))
		f.reminders.AssertExpectations(t)
	})

	t.Run("operator request is unrestricted", func(t *testing.T) {
		f := newFixture(t)
		f.reminders.On("SendManual", mock.Anything, "", "b1", notifications.Lead1Hour).Return(2, nil).Once()

		rec, _ := f.asOperator(t, http.MethodPost, "/reminders/b1?lead=1h")
		require.Equal(t, http.StatusAccepted, rec.Code)
		f.reminders.AssertExpectations(t)
	})

	t.Run("errors map to status", func(t *testing.T) {
		tests := []struct {
			err  error
			code int
		}{
			{reminder.ErrInvalidLead, http.StatusBadRequest},
			{tutoring.ErrBookingNotFound, http.StatusNotFound},
			{reminder.ErrBookingNotConfirmed, http.StatusConflict},
			{reminder.ErrReminderAlreadySent, http.StatusConflict},
			{errors.New("mongo down"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			f := newFixture(t)
			f.reminders.On("SendManual", mock.Anything, "student-1", "b1", notifications.Lead1Hour).Return(0, tt.err).Once()

			rec, env := f.do(t, http.MethodPost, "/reminders/b1?lead=1h", "student-1", "")
			assert.Equal(t, tt.code, rec.Code, tt.err.Error())
			require.NotNil(t, env.Error)
		}
	})

	t.Run("stats are operator-only", func(t *testing.T) {
		f := newFixture(t)
		f.reminders.On("Stats", mock.Anything).Return(reminder.Stats{Today: 1, Tomorrow: 2, NextWeek: 5, GeneratedAt: testNow}, nil)

		rec, env := f.do(t, http.MethodGet, "/reminders/stats", "student-1", "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "forbidden", env.Error.Code)

		rec, env = f.asOperator(t, http.MethodGet, "/reminders/stats")
		require.Equal(t, http.StatusOK, rec.Code)

		var stats reminder.Stats
		require.NoError(t, json.Unmarshal(env.Data, &stats))
		assert.Equal(t, 5, stats.NextWeek)
		f.reminders.AssertNumberOfCalls(t, "Stats", 1)
	})
}

func TestService_ManualReminderScopedToParticipants(t *testing.T) {
	t.Parallel()

	store := tutoring.NewMemoryStore()
	store.PutUser(tutoring.User{ID: "student-1", Name: "Anna", Role: tutoring.RoleStudent})
	store.PutUser(tutoring.User{ID: "teacher-1", Name: "Tom", Role: tutoring.RoleTeacher})
	store.PutBooking(tutoring.Booking{
		ID:        "b1",
		StudentID: "student-1",
		TeacherID: "teacher-1",
		Subject:   "Maths",
		Date:      tutoring.DayOf(testNow.AddDate(0, 0, 1)),
		StartTime: "10:00",
		Status:    tutoring.BookingConfirmed,
	})

	storage := notifications.NewMemoryStorage()
	manager := notifications.NewManager(storage, notifications.WithManagerLogger(logger.Discard()))
	notifier := tutoring.NewNotifier(manager, store, store, tutoring.WithNotifierLogger(logger.Discard()))
	reminders := reminder.NewService(store, notifier, manager,
		reminder.WithGuard(reminder.NewMemoryGuard(48*time.Hour)),
		reminder.WithLocation(time.UTC),
		reminder.WithClock(func() time.Time { return testNow }),
		reminder.WithLogger(logger.Discard()),
	)
	h := withIdentity(api.NewService(manager,
		api.WithLogger(logger.Discard()),
		api.WithReminders(reminders),
	).Handle())

	for range 3 {
		rec, env := serve(t, h, http.MethodPost, "/reminders/b1", "mallory", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
	}
	count, err := storage.Count(context.Background(), "student-1", notifications.Filter{})
	require.NoError(t, err)
	assert.Zero(t, count)

	rec, _ := serve(t, h, http.MethodPost, "/reminders/b1", "teacher-1", "", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	rec, env := serve(t, h, http.MethodPost, "/reminders/b1", "teacher-1", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "reminder_already_sent", env.Error.Code)

	count, err = storage.Count(context.Background(), "student-1", notifications.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestService_WithoutOptionalRoutes(t *testing.T) {
	t.Parallel()

	svc := api.NewService(notifications.NewManager(notifications.NewMemoryStorage()))
	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	req = req.WithContext(api.SetUserIDToContext(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	svc.Handle().ServeHTTP(rec, req)

	// falls through to GET /{id}
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

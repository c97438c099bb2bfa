package tutoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
	"github.com/dmitrymomot/tutorhub/svc/tutoring"
)

func listFor(t *testing.T, f *fixture, recipient string) []notifications.Notification {
	t.Helper()
	list, err := f.storage.List(context.Background(), recipient, notifications.ListOptions{})
	require.NoError(t, err)
	return list
}

func TestNotifier_BookingPending(t *testing.T) {
	t.Parallel()
	f := newFixture()

	f.notifier.BookingPending(context.Background(), testBooking())

	list := listFor(t, f, teacher.ID)
	require.Len(t, list, 1)
	n := list[0]
	assert.Equal(t, notifications.TypeBookingPending, n.Type)
	assert.Equal(t, notifications.CategoryBooking, n.Category)
	assert.Equal(t, notifications.PriorityHigh, n.Priority)
	assert.True(t, n.ActionRequired)
	assert.Equal(t, "/teacher/bookings/booking-1", n.ActionURL)
	assert.Equal(t, student.ID, n.Sender)
	assert.Contains(t, n.Message, "Anna")

	data, ok := n.Data.(notifications.BookingPendingData)
	require.True(t, ok)
	assert.Equal(t, "2026-10-16", data.Date)
	require.NotNil(t, data.Amount)
	assert.InDelta(t, 40.0, *data.Amount, 0.001)
	assert.Empty(t, listFor(t, f, student.ID))
}

func TestNotifier_BookingApproved(t *testing.T) {
	t.Parallel()

	t.Run("without payment", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.notifier.BookingApproved(context.Background(), testBooking())

		list := listFor(t, f, student.ID)
		require.Len(t, list, 1)
		assert.Equal(t, notifications.TypeBookingApproved, list[0].Type)
		assert.Equal(t, notifications.PriorityHigh, list[0].Priority)
		assert.Empty(t, listFor(t, f, teacher.ID))
	})

	t.Run("with completed payment notifies teacher", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.store.PutPayment(tutoring.Payment{
			ID:              "payment-1",
			BookingID:       "booking-1",
			PayerID:         student.ID,
			Amount:          40,
			PlatformFee:     4,
			TeacherEarnings: 36,
			Status:          tutoring.PaymentCompleted,
		})
		f.notifier.BookingApproved(context.Background(), testBooking())

		require.Len(t, listFor(t, f, student.ID), 1)
		list := listFor(t, f, teacher.ID)
		require.Len(t, list, 1)
		assert.Equal(t, notifications.TypePaymentReceived, list[0].Type)
		assert.Equal(t, notifications.PriorityMedium, list[0].Priority)
		data := list[0].Data.(notifications.PaymentReceivedData)
		assert.InDelta(t, 36.0, *data.TeacherEarnings, 0.001)
	})

	t.Run("pending payment is ignored", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		f.store.PutPayment(tutoring.Payment{ID: "payment-1", BookingID: "booking-1", Status: tutoring.PaymentPending})
		f.notifier.BookingApproved(context.Background(), testBooking())
		assert.Empty(t, listFor(t, f, teacher.ID))
	})
}

func TestNotifier_BookingRejectedRefund(t *testing.T) {
	t.Parallel()

	refund := 25.0
	tests := []struct {
		name    string
		payment *tutoring.Payment
		want    float64
	}{
		{name: "no payment falls back to booking amount", want: 40},
		{
			name:    "payment without refund amount",
			payment: &tutoring.Payment{ID: "p1", BookingID: "booking-1", Amount: 40, Status: tutoring.PaymentCompleted},
			want:    40,
		},
		{
			name:    "payment refund amount",
			payment: &tutoring.Payment{ID: "p1", BookingID: "booking-1", Amount: 40, RefundAmount: &refund, Status: tutoring.PaymentRefunded},
			want:    25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			if tt.payment != nil {
				f.store.PutPayment(*tt.payment)
			}
			f.notifier.BookingRejected(context.Background(), testBooking(), "Teacher unavailable")

			list := listFor(t, f, student.ID)
			require.Len(t, list, 1)
			assert.Equal(t, notifications.PriorityMedium, list[0].Priority)
			assert.Contains(t, list[0].Message, "Teacher unavailable")
			data := list[0].Data.(notifications.BookingRejectedData)
			require.NotNil(t, data.RefundAmount)
			assert.InDelta(t, tt.want, *data.RefundAmount, 0.001)
		})
	}
}

func TestNotifier_RefundProcessed(t *testing.T) {
	t.Parallel()
	f := newFixture()

	f.notifier.RefundProcessed(context.Background(), testBooking(), tutoring.Payment{
		ID:        "payment-1",
		BookingID: "booking-1",
		PayerID:   student.ID,
		Amount:    40,
		Status:    tutoring.PaymentRefunded,
	})

	list := listFor(t, f, student.ID)
	require.Len(t, list, 1)
	assert.Equal(t, notifications.TypePaymentRefunded, list[0].Type)
	assert.Equal(t, notifications.CategoryPayment, list[0].Category)
	assert.InDelta(t, 40.0, *list[0].Data.(notifications.PaymentRefundedData).RefundAmount, 0.001)
}

func TestNotifier_ClassReminder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lead         notifications.ReminderLead
		wantPriority notifications.Priority
	}{
		{notifications.Lead1Hour, notifications.PriorityHigh},
		{notifications.Lead24Hours, notifications.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(string(tt.lead), func(t *testing.T) {
			t.Parallel()
			f := newFixture()

			created := f.notifier.ClassReminder(context.Background(), testBooking(), tt.lead)
			assert.Equal(t, 2, created)

			for _, who := range []struct {
				user        tutoring.User
				counterpart string
			}{{student, "Tom"}, {teacher, "Anna"}} {
				list := listFor(t, f, who.user.ID)
				require.Len(t, list, 1)
				n := list[0]
				assert.Equal(t, notifications.TypeClassReminder, n.Type)
				assert.Equal(t, notifications.CategoryReminder, n.Category)
				assert.Equal(t, tt.wantPriority, n.Priority)
				assert.Empty(t, n.Sender)
				data := n.Data.(notifications.ClassReminderData)
				assert.Equal(t, tt.lead, data.Lead)
				assert.Equal(t, string(who.user.Role), data.Role)
				assert.Equal(t, who.counterpart, data.CounterpartName)
			}
		})
	}
}

func TestNotifier_ClassReminderForOneParticipant(t *testing.T) {
	t.Parallel()
	f := newFixture()

	created := f.notifier.ClassReminder(context.Background(), testBooking(), notifications.Lead24Hours, teacher.ID)
	assert.Equal(t, 1, created)
	assert.Len(t, listFor(t, f, teacher.ID), 1)
	assert.Empty(t, listFor(t, f, student.ID))

	created = f.notifier.ClassReminder(context.Background(), testBooking(), notifications.Lead24Hours, "someone-else")
	assert.Zero(t, created)
}

// MockCreator for checking the email flag and failure isolation
type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) Create(ctx context.Context, params notifications.CreateParams) (*notifications.Notification, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notifications.Notification), args.Error(1)
}

func TestNotifier_ClassReminderEmailOnlyFor24h(t *testing.T) {
	t.Parallel()

	store := tutoring.NewMemoryStore()
	creator := &MockCreator{}
	creator.On("Create", mock.Anything, mock.MatchedBy(func(p notifications.CreateParams) bool {
		return p.SendEmail
	})).Return(&notifications.Notification{}, nil).Twice()
	creator.On("Create", mock.Anything, mock.MatchedBy(func(p notifications.CreateParams) bool {
		return !p.SendEmail
	})).Return(&notifications.Notification{}, nil).Twice()

	n := tutoring.NewNotifier(creator, store, store, tutoring.WithNotifierLogger(logger.Discard()))
	n.ClassReminder(context.Background(), testBooking(), notifications.Lead24Hours)
	n.ClassReminder(context.Background(), testBooking(), notifications.Lead1Hour)

	creator.AssertExpectations(t)
}

func TestNotifier_FailureIsolation(t *testing.T) {
	t.Parallel()

	store := tutoring.NewMemoryStore()
	creator := &MockCreator{}
	creator.On("Create", mock.Anything, mock.MatchedBy(func(p notifications.CreateParams) bool {
		return p.Recipient == student.ID
	})).Return(nil, errors.New("db down"))
	creator.On("Create", mock.Anything, mock.MatchedBy(func(p notifications.CreateParams) bool {
		return p.Recipient == teacher.ID
	})).Return(&notifications.Notification{}, nil)

	n := tutoring.NewNotifier(creator, store, store, tutoring.WithNotifierLogger(logger.Discard()))

	created := n.ClassReminder(context.Background(), testBooking(), notifications.Lead1Hour)
	assert.Equal(t, 1, created)
	creator.AssertNumberOfCalls(t, "Create", 2)

	assert.NotPanics(t, func() {
		n.BookingApproved(context.Background(), testBooking())
		n.BookingRejected(context.Background(), testBooking(), "")
	})
}

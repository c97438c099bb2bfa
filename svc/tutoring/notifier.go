package tutoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/tutorhub/pkg/logger"
	"github.com/dmitrymomot/tutorhub/pkg/notifications"
)

// NotificationCreator creates notifications. Implemented by notifications.Manager.
type NotificationCreator interface {
	Create(ctx context.Context, params notifications.CreateParams) (*notifications.Notification, error)
}

// Notifier maps booking and payment lifecycle events to notifications.
// None of its methods fail the caller: lookups that fail degrade to
// placeholders and creation failures are logged.
type Notifier struct {
	notifications NotificationCreator
	users         Users
	payments      Payments
	logger        *slog.Logger
}

type NotifierOption func(*Notifier)

func WithNotifierLogger(l *slog.Logger) NotifierOption {
	return func(n *Notifier) {
		n.logger = l
	}
}

func NewNotifier(creator NotificationCreator, users Users, payments Payments, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		notifications: creator,
		users:         users,
		payments:      payments,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BookingPending tells the teacher a student requested a class.
func (n *Notifier) BookingPending(ctx context.Context, b Booking) {
	student := n.userName(ctx, b.StudentID)
	n.create(ctx, "booking_pending", b.ID, notifications.CreateParams{
		Recipient:      b.TeacherID,
		Sender:         b.StudentID,
		Title:          "New booking request",
		Message:        fmt.Sprintf("%s requested a %s class on %s at %s", orSomeone(student), b.Subject, b.Day(), b.StartTime),
		Type:           notifications.TypeBookingPending,
		Category:       notifications.CategoryBooking,
		Priority:       notifications.PriorityHigh,
		ActionRequired: true,
		ActionURL:      "/teacher/bookings/" + b.ID,
		SendEmail:      true,
		Data: notifications.BookingPendingData{
			BookingID:   b.ID,
			StudentName: student,
			Subject:     b.Subject,
			Date:        b.Day(),
			Time:        b.StartTime,
			Duration:    b.Duration,
			Amount:      notifications.Amount(b.Amount),
			Notes:       b.Notes,
		},
	})
}

// BookingApproved tells the student the booking was accepted and, if the
// class is already paid for, tells the teacher about the payment.
func (n *Notifier) BookingApproved(ctx context.Context, b Booking) {
	teacher := n.userName(ctx, b.TeacherID)
	n.create(ctx, "booking_approved", b.ID, notifications.CreateParams{
		Recipient: b.StudentID,
		Sender:    b.TeacherID,
		Title:     "Booking approved",
		Message:   fmt.Sprintf("%s approved your %s class on %s at %s", orSomeone(teacher), b.Subject, b.Day(), b.StartTime),
		Type:      notifications.TypeBookingApproved,
		Category:  notifications.CategoryBooking,
		Priority:  notifications.PriorityHigh,
		ActionURL: "/student/bookings/" + b.ID,
		SendEmail: true,
		Data: notifications.BookingApprovedData{
			BookingID:   b.ID,
			TeacherName: teacher,
			Subject:     b.Subject,
			Date:        b.Day(),
			Time:        b.StartTime,
			MeetingLink: b.MeetingLink,
		},
	})

	p, err := n.payments.PaymentForBooking(ctx, b.ID)
	if err != nil {
		if !errors.Is(err, ErrPaymentNotFound) {
			n.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to look up payment for approved booking",
				logger.BookingID(b.ID),
				logger.Error(err),
			)
		}
		return
	}
	if p.Status == PaymentCompleted {
		n.PaymentReceived(ctx, b, p)
	}
}

// BookingRejected tells the student the booking was declined. The refund
// shown is the payment's refund amount, falling back to the booking amount.
func (n *Notifier) BookingRejected(ctx context.Context, b Booking, reason string) {
	refund := notifications.Amount(b.Amount)
	if p, err := n.payments.PaymentForBooking(ctx, b.ID); err == nil && p.RefundAmount != nil {
		refund = notifications.Amount(*p.RefundAmount)
	}

	teacher := n.userName(ctx, b.TeacherID)
	message := fmt.Sprintf("Your %s class on %s was declined", b.Subject, b.Day())
	if reason != "" {
		message += ": " + reason
	}

	n.create(ctx, "booking_rejected", b.ID, notifications.CreateParams{
		Recipient: b.StudentID,
		Sender:    b.TeacherID,
		Title:     "Booking declined",
		Message:   message,
		Type:      notifications.TypeBookingRejected,
		Category:  notifications.CategoryBooking,
		Priority:  notifications.PriorityMedium,
		ActionURL: "/student/bookings/" + b.ID,
		SendEmail: true,
		Data: notifications.BookingRejectedData{
			BookingID:    b.ID,
			TeacherName:  teacher,
			Subject:      b.Subject,
			Date:         b.Day(),
			Reason:       reason,
			RefundAmount: refund,
		},
	})
}

// PaymentReceived tells the teacher a class was paid for.
func (n *Notifier) PaymentReceived(ctx context.Context, b Booking, p Payment) {
	student := n.userName(ctx, b.StudentID)
	n.create(ctx, "payment_received", b.ID, notifications.CreateParams{
		Recipient: b.TeacherID,
		Sender:    p.PayerID,
		Title:     "Payment received",
		Message:   fmt.Sprintf("%s paid for the %s class on %s", orSomeone(student), b.Subject, b.Day()),
		Type:      notifications.TypePaymentReceived,
		Category:  notifications.CategoryPayment,
		Priority:  notifications.PriorityMedium,
		ActionURL: "/teacher/earnings",
		SendEmail: true,
		Data: notifications.PaymentReceivedData{
			BookingID:       b.ID,
			PaymentID:       p.ID,
			StudentName:     student,
			Subject:         b.Subject,
			Date:            b.Day(),
			Amount:          notifications.Amount(p.Amount),
			PlatformFee:     notifications.Amount(p.PlatformFee),
			TeacherEarnings: notifications.Amount(p.TeacherEarnings),
		},
	})
}

// RefundProcessed tells the payer a refund went through.
func (n *Notifier) RefundProcessed(ctx context.Context, b Booking, p Payment) {
	refund := p.Amount
	if p.RefundAmount != nil {
		refund = *p.RefundAmount
	}
	n.create(ctx, "payment_refunded", b.ID, notifications.CreateParams{
		Recipient: p.PayerID,
		Title:     "Refund processed",
		Message:   fmt.Sprintf("Your payment for the %s class has been refunded", b.Subject),
		Type:      notifications.TypePaymentRefunded,
		Category:  notifications.CategoryPayment,
		Priority:  notifications.PriorityMedium,
		ActionURL: "/student/payments",
		SendEmail: true,
		Data: notifications.PaymentRefundedData{
			BookingID:    b.ID,
			PaymentID:    p.ID,
			Subject:      b.Subject,
			RefundAmount: notifications.Amount(refund),
			Reason:       p.RefundReason,
		},
	})
}

// ClassReminder notifies the student and the teacher separately and returns
// how many reminders were created. recipients narrows it to the listed
// participants. Only 24h reminders are emailed.
func (n *Notifier) ClassReminder(ctx context.Context, b Booking, lead notifications.ReminderLead, recipients ...string) int {
	priority := notifications.PriorityMedium
	title := "Class tomorrow"
	message := fmt.Sprintf("Your %s class is tomorrow at %s", b.Subject, b.StartTime)
	if lead == notifications.Lead1Hour {
		priority = notifications.PriorityHigh
		title = "Class starting soon"
		message = fmt.Sprintf("Your %s class starts in 1 hour at %s", b.Subject, b.StartTime)
	}

	student := n.userName(ctx, b.StudentID)
	teacher := n.userName(ctx, b.TeacherID)

	participants := []struct {
		recipient   string
		role        Role
		counterpart string
	}{
		{b.StudentID, RoleStudent, teacher},
		{b.TeacherID, RoleTeacher, student},
	}

	created := 0
	for _, p := range participants {
		if len(recipients) > 0 && !slices.Contains(recipients, p.recipient) {
			continue
		}
		ok := n.create(ctx, "class_reminder", b.ID, notifications.CreateParams{
			Recipient: p.recipient,
			Title:     title,
			Message:   message,
			Type:      notifications.TypeClassReminder,
			Category:  notifications.CategoryReminder,
			Priority:  priority,
			ActionURL: fmt.Sprintf("/%s/bookings/%s", p.role, b.ID),
			SendEmail: lead == notifications.Lead24Hours,
			Data: notifications.ClassReminderData{
				BookingID:       b.ID,
				Subject:         b.Subject,
				Date:            b.Day(),
				Time:            b.StartTime,
				Lead:            lead,
				Role:            string(p.role),
				CounterpartName: p.counterpart,
				MeetingLink:     b.MeetingLink,
			},
		})
		if ok {
			created++
		}
	}
	return created
}

func (n *Notifier) create(ctx context.Context, event, bookingID string, params notifications.CreateParams) bool {
	if _, err := n.notifications.Create(ctx, params); err != nil {
		n.logger.LogAttrs(ctx, slog.LevelError, "Failed to create notification",
			logger.Event(event),
			logger.BookingID(bookingID),
			logger.UserID(params.Recipient),
			logger.Error(err),
		)
		return false
	}
	return true
}

func (n *Notifier) userName(ctx context.Context, id string) string {
	u, err := n.users.User(ctx, id)
	if err != nil {
		n.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to look up user for notification",
			logger.UserID(id),
			logger.Error(err),
		)
		return ""
	}
	return u.Name
}

func orSomeone(name string) string {
	if name == "" {
		return "A user"
	}
	return name
}

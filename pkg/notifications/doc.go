// Package notifications creates, delivers and manages user notifications.
//
// Manager is the single entry point. Create persists a Notification first and
// only then attempts delivery:
//
//  1. the record is written to Storage (the durable source of truth);
//  2. if the recipient has a live connection, a "new_notification" event is
//     pushed through the LiveChannel, fire-and-forget;
//  3. when requested, an email is rendered from a type-specific template and
//     sent in the background. Success flips EmailSent; failure is logged.
//
// Delivery failures never fail Create and never roll back the record.
//
// The Data field is a closed set of payload types, one per notification Type,
// each carrying only the fields its email template reads. Templates render
// "N/A" for any field that is missing.
//
// Query operations are always scoped to a recipient: reading, marking or
// deleting another user's notification is a silent no-op.
//
//	store := notifications.NewMemoryStorage()
//	m := notifications.NewManager(store,
//		notifications.WithLiveChannel(hub),
//		notifications.WithMailer(sender, directory),
//	)
//	n, err := m.Create(ctx, notifications.CreateParams{
//		Recipient: teacherID,
//		Title:     "New booking request",
//		Message:   "Anna requested a Maths class",
//		Type:      notifications.TypeBookingPending,
//		Category:  notifications.CategoryBooking,
//		Priority:  notifications.PriorityHigh,
//		Data:      notifications.BookingPendingData{BookingID: bookingID},
//		SendEmail: true,
//	})
package notifications

package notifications

import "errors"

var (
	// ErrNotificationNotFound is returned when a notification does not exist for the recipient.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrInvalidNotification is returned when creation input is missing required fields.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrInvalidFilter is returned for unknown list filters.
	ErrInvalidFilter = errors.New("invalid notification filter")

	// ErrEmailNotConfigured is returned when an email is requested but no mailer is wired.
	ErrEmailNotConfigured = errors.New("email delivery is not configured")

	// ErrRecipientEmailUnknown is returned when the recipient has no email address.
	ErrRecipientEmailUnknown = errors.New("recipient email address unknown")
)

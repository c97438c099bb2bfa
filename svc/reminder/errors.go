package reminder

import "errors"

var (
	ErrBookingNotConfirmed = errors.New("booking is not confirmed")
	ErrInvalidLead         = errors.New("invalid reminder lead")
	ErrReminderAlreadySent = errors.New("reminder already sent")
)

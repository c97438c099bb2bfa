package tutoring

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPoison marks an event that can never be handled, such as malformed
	// JSON or an unknown routing key. Poison deliveries are dead-lettered.
	ErrPoison = errors.New("poison message")
)

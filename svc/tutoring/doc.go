// Package tutoring holds the read side of the marketplace that notifications
// depend on: users, bookings and payments, their repositories, the notifier
// that maps booking and payment lifecycle events to notifications, and the
// AMQP consumer that feeds those events in from other services.
//
// Notification is a side effect of the business operation. Notifier methods
// never return delivery errors; they log them.
package tutoring

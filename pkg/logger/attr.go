package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error".
// A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// NotificationID records the notification identifier under the key "notification_id".
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// BookingID records the booking identifier under the key "booking_id".
func BookingID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("booking_id", id)
}

// PaymentID records the payment identifier under the key "payment_id".
func PaymentID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("payment_id", id)
}

// ConnectionID records a real-time connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String("connection_id", id)
}

// Lead records a reminder lead time such as "1h" or "24h".
func Lead(lead string) slog.Attr {
	return slog.String("lead", lead)
}

// Task records a scheduled task name.
func Task(name string) slog.Attr {
	return slog.String("task", name)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Count records a counter value.
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Duration records an elapsed duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

package tutoring

import (
	"context"
	"time"

	"github.com/dmitrymomot/tutorhub/pkg/notifications"
)

type Users interface {
	User(ctx context.Context, id string) (User, error)
}

type Bookings interface {
	Booking(ctx context.Context, id string) (Booking, error)
	// ConfirmedBetween returns confirmed bookings with from <= Date < to,
	// ordered by date and start time.
	ConfirmedBetween(ctx context.Context, from, to time.Time) ([]Booking, error)
	// CountConfirmedBetween counts what ConfirmedBetween would return.
	CountConfirmedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type Payments interface {
	Payment(ctx context.Context, id string) (Payment, error)
	// PaymentForBooking returns the most recent payment for a booking.
	PaymentForBooking(ctx context.Context, bookingID string) (Payment, error)
}

// Store is the full read model.
type Store interface {
	Users
	Bookings
	Payments
}

// NewDirectory resolves notification recipients through users.
func NewDirectory(users Users) notifications.Directory {
	return notifications.DirectoryFunc(func(ctx context.Context, recipient string) (notifications.Contact, error) {
		u, err := users.User(ctx, recipient)
		if err != nil {
			return notifications.Contact{}, err
		}
		return notifications.Contact{Name: u.Name, Email: u.Email}, nil
	})
}

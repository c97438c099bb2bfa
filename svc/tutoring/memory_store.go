package tutoring

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for development and tests.
type MemoryStore struct {
	users    map[string]User
	bookings map[string]Booking
	payments map[string]Payment
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]User),
		bookings: make(map[string]Booking),
		payments: make(map[string]Payment),
	}
}

func (s *MemoryStore) PutUser(u User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

func (s *MemoryStore) PutBooking(b Booking) {
	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()
}

func (s *MemoryStore) PutPayment(p Payment) {
	s.mu.Lock()
	s.payments[p.ID] = p
	s.mu.Unlock()
}

func (s *MemoryStore) User(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) Booking(_ context.Context, id string) (Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (s *MemoryStore) ConfirmedBetween(_ context.Context, from, to time.Time) ([]Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Booking
	for _, b := range s.bookings {
		if b.Status == BookingConfirmed && !b.Date.Before(from) && b.Date.Before(to) {
			result = append(result, b)
		}
	}
	slices.SortFunc(result, func(a, b Booking) int {
		return cmp.Or(
			a.Date.Compare(b.Date),
			cmp.Compare(a.StartTime, b.StartTime),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return result, nil
}

func (s *MemoryStore) CountConfirmedBetween(ctx context.Context, from, to time.Time) (int, error) {
	bookings, err := s.ConfirmedBetween(ctx, from, to)
	return len(bookings), err
}

func (s *MemoryStore) Payment(_ context.Context, id string) (Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (s *MemoryStore) PaymentForBooking(_ context.Context, bookingID string) (Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest Payment
		found  bool
	)
	for _, p := range s.payments {
		if p.BookingID == bookingID && (!found || p.CreatedAt.After(latest.CreatedAt)) {
			latest, found = p, true
		}
	}
	if !found {
		return Payment{}, ErrPaymentNotFound
	}
	return latest, nil
}

package notifications

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// Suitable for development and testing.
type MemoryStorage struct {
	notifications map[string][]Notification // recipient -> notifications, insertion order
	owners        map[string]string         // notification ID -> recipient
	mu            sync.RWMutex
}

// NewMemoryStorage creates a new in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
		owners:        make(map[string]string),
	}
}

func (s *MemoryStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		return errors.New("notification ID is required")
	}
	if notif.Recipient == "" {
		return errors.New("recipient is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.owners[notif.ID]; exists {
		return errors.New("notification ID already exists")
	}

	s.notifications[notif.Recipient] = append(s.notifications[notif.Recipient], notif)
	s.owners[notif.ID] = notif.Recipient
	return nil
}

func (s *MemoryStorage) Get(ctx context.Context, recipient, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[recipient] {
		if n.ID == notifID {
			notif := n
			return &notif, nil
		}
	}

	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	filtered := s.filter(recipient, opts.Filter)
	s.mu.RUnlock()

	if opts.Offset > 0 {
		if opts.Offset >= len(filtered) {
			return []Notification{}, nil
		}
		filtered = filtered[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(filtered) {
		filtered = filtered[:opts.Limit]
	}

	return filtered, nil
}

func (s *MemoryStorage) Count(ctx context.Context, recipient string, filter Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[recipient] {
		if filter.match(n) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, recipient string, notifIDs []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifications := s.notifications[recipient]
	for i := range notifications {
		if !notifications[i].IsRead && slices.Contains(notifIDs, notifications[i].ID) {
			notifications[i].IsRead = true
			notifications[i].UpdatedAt = at
		}
	}
	return nil
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, recipient string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notifications := s.notifications[recipient]
	for i := range notifications {
		if !notifications[i].IsRead {
			notifications[i].IsRead = true
			notifications[i].UpdatedAt = at
		}
	}
	return nil
}

func (s *MemoryStorage) MarkEmailSent(ctx context.Context, notifID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipient, ok := s.owners[notifID]
	if !ok {
		return ErrNotificationNotFound
	}

	notifications := s.notifications[recipient]
	for i := range notifications {
		if notifications[i].ID == notifID {
			notifications[i].EmailSent = true
			notifications[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (s *MemoryStorage) Delete(ctx context.Context, recipient, notifID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.owners[notifID] != recipient {
		return nil
	}

	s.notifications[recipient] = slices.DeleteFunc(s.notifications[recipient], func(n Notification) bool {
		return n.ID == notifID
	})
	delete(s.owners, notifID)
	return nil
}

func (s *MemoryStorage) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for recipient, notifications := range s.notifications {
		s.notifications[recipient] = slices.DeleteFunc(notifications, func(n Notification) bool {
			if n.IsRead && n.CreatedAt.Before(cutoff) {
				delete(s.owners, n.ID)
				deleted++
				return true
			}
			return false
		})
	}
	return deleted, nil
}

// filter returns copies of the recipient's matching notifications, newest first.
// Equal timestamps keep the later insertion first. Callers must hold the lock.
func (s *MemoryStorage) filter(recipient string, f Filter) []Notification {
	stored := s.notifications[recipient]
	result := make([]Notification, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		if f.match(stored[i]) {
			result = append(result, stored[i])
		}
	}
	slices.SortStableFunc(result, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result
}

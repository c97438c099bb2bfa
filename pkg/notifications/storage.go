package notifications

import (
	"context"
	"time"
)

// Storage persists notifications. Every recipient-scoped method must treat a
// notification owned by another recipient as absent.
type Storage interface {
	Create(ctx context.Context, notif Notification) error
	Get(ctx context.Context, recipient, notifID string) (*Notification, error)
	// List returns matching notifications newest first.
	List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, error)
	Count(ctx context.Context, recipient string, filter Filter) (int, error)
	MarkRead(ctx context.Context, recipient string, notifIDs []string, at time.Time) error
	MarkAllRead(ctx context.Context, recipient string, at time.Time) error
	MarkEmailSent(ctx context.Context, notifID string, at time.Time) error
	Delete(ctx context.Context, recipient, notifID string) error
	// DeleteReadBefore removes read notifications created strictly before cutoff.
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Filter narrows a recipient's notifications.
type Filter struct {
	UnreadOnly bool
	Category   Category
}

func (f Filter) match(n Notification) bool {
	if f.UnreadOnly && n.IsRead {
		return false
	}
	if f.Category != "" && n.Category != f.Category {
		return false
	}
	return true
}

// ListOptions adds pagination to a Filter. Zero Limit means no limit.
type ListOptions struct {
	Filter
	Offset int
	Limit  int
}

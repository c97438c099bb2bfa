package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tutorhub/pkg/notifications"
)

// Guard records which reminders were already sent, per booking, lead and
// recipient.
type Guard interface {
	// Acquire records the marker and reports whether it was absent.
	Acquire(ctx context.Context, bookingID string, lead notifications.ReminderLead, recipient string) (bool, error)
	// Release removes the marker so the reminder can be sent again.
	Release(ctx context.Context, bookingID string, lead notifications.ReminderLead, recipient string) error
}

func markerKey(bookingID string, lead notifications.ReminderLead, recipient string) string {
	return fmt.Sprintf("reminder:%s:%s:%s", bookingID, lead, recipient)
}

// MemoryGuard keeps markers in process memory. Markers expire after ttl.
type MemoryGuard struct {
	ttl     time.Duration
	now     func() time.Time
	markers map[string]time.Time
	mu      sync.Mutex
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		ttl:     ttl,
		now:     time.Now,
		markers: make(map[string]time.Time),
	}
}

func (g *MemoryGuard) Acquire(_ context.Context, bookingID string, lead notifications.ReminderLead, recipient string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.markers {
		if !now.Before(exp) {
			delete(g.markers, k)
		}
	}

	key := markerKey(bookingID, lead, recipient)
	if _, ok := g.markers[key]; ok {
		return false, nil
	}
	g.markers[key] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, bookingID string, lead notifications.ReminderLead, recipient string) error {
	g.mu.Lock()
	delete(g.markers, markerKey(bookingID, lead, recipient))
	g.mu.Unlock()
	return nil
}

// RedisGuard shares markers between instances using SET NX with a TTL.
type RedisGuard struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client redis.Cmdable, prefix string, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, prefix: prefix, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, bookingID string, lead notifications.ReminderLead, recipient string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+markerKey(bookingID, lead, recipient), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set reminder marker: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, bookingID string, lead notifications.ReminderLead, recipient string) error {
	if err := g.client.Del(ctx, g.prefix+markerKey(bookingID, lead, recipient)).Err(); err != nil {
		return fmt.Errorf("failed to delete reminder marker: %w", err)
	}
	return nil
}

package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tutorhub/pkg/broadcast"
	"github.com/dmitrymomot/tutorhub/pkg/cache"
	"github.com/dmitrymomot/tutorhub/pkg/logger"
)

// Event is a named payload pushed to a recipient.
type Event struct {
	Name    string
	Payload any
}

// Hub is the connected-recipient registry. Safe for concurrent use.
type Hub struct {
	recipients *cache.LRU[string, *broadcast.MemoryBroadcaster[Event]]
	cfg        Config
	logger     *slog.Logger
	closed     bool
	mu         sync.Mutex
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithHubLogger sets the logger for the Hub.
func WithHubLogger(l *slog.Logger) HubOption {
	return func(h *Hub) {
		h.logger = l
	}
}

// NewHub creates a hub. Non-positive config values fall back to defaults.
func NewHub(cfg Config, opts ...HubOption) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.MaxRecipients <= 0 {
		cfg.MaxRecipients = 10000
	}

	h := &Hub{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.recipients = cache.NewLRU[string, *broadcast.MemoryBroadcaster[Event]](cfg.MaxRecipients)
	h.recipients.OnEvict(func(recipient string, b *broadcast.MemoryBroadcaster[Event]) {
		if n := b.Len(); n > 0 {
			h.logger.Warn("dropping live connections of evicted recipient",
				logger.UserID(recipient),
				logger.Count(n),
			)
		}
		_ = b.Close()
	})

	return h
}

// Connection is one live subscription of a recipient.
type Connection struct {
	ID        string
	Recipient string

	hub  *Hub
	sub  broadcast.Subscriber[Event]
	once sync.Once
	done chan struct{}
}

// Events returns the channel events arrive on. It is closed when the
// connection is closed.
func (c *Connection) Events() <-chan broadcast.Message[Event] {
	return c.sub.Receive()
}

// Close unregisters the connection. It is idempotent.
func (c *Connection) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.hub.disconnect(c)
	})
	return nil
}

// Connect registers a live connection for recipient. The connection is
// closed when ctx is done or Close is called.
func (h *Hub) Connect(ctx context.Context, recipient string) (*Connection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	b := h.recipients.GetOrCreate(recipient, func() *broadcast.MemoryBroadcaster[Event] {
		return broadcast.NewMemoryBroadcaster[Event](h.cfg.BufferSize)
	})

	conn := &Connection{
		ID:        uuid.New().String(),
		Recipient: recipient,
		hub:       h,
		sub:       b.Subscribe(context.Background()),
		done:      make(chan struct{}),
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-conn.done:
		}
	}()

	h.logger.Debug("live connection opened",
		logger.UserID(recipient),
		logger.ConnectionID(conn.ID),
	)
	return conn, nil
}

func (h *Hub) disconnect(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_ = c.sub.Close()
	if b, ok := h.recipients.Get(c.Recipient); ok && b.Len() == 0 {
		h.recipients.Remove(c.Recipient)
	}

	h.logger.Debug("live connection closed",
		logger.UserID(c.Recipient),
		logger.ConnectionID(c.ID),
	)
}

// IsConnected reports whether recipient has at least one open connection.
func (h *Hub) IsConnected(recipient string) bool {
	b, ok := h.recipients.Get(recipient)
	return ok && b.Len() > 0
}

// Emit pushes an event to every connection of recipient. Connections with a
// full buffer miss the event; ErrNotDelivered means none accepted it.
func (h *Hub) Emit(ctx context.Context, recipient, event string, payload any) error {
	b, ok := h.recipients.Get(recipient)
	if !ok || b.Len() == 0 {
		return ErrNotConnected
	}

	delivered, err := b.Broadcast(ctx, broadcast.Message[Event]{Data: Event{Name: event, Payload: payload}})
	if err != nil {
		return err
	}
	if delivered == 0 {
		return ErrNotDelivered
	}
	return nil
}

// Recipients returns the number of recipients with a registered broadcaster.
func (h *Hub) Recipients() int {
	return h.recipients.Len()
}

// Close drops every connection. Later Connect calls fail with ErrHubClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.recipients.Clear()
	return nil
}
